package checkout

import (
	"github.com/google/uuid"

	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
)

// partitionDuplicates splits cart items into the ones to commit and the ones
// silently skipped because the participant already holds an active enrollment
// for that program. Repeated items inside the cart collapse to their first
// occurrence so one cart can never write the same participant twice.
func partitionDuplicates(items []models.CartItem, existing []models.Enrollment) (kept, skipped []models.CartItem) {
	enrolled := make(map[models.ParticipantKey]struct{}, len(existing))
	for _, row := range existing {
		enrolled[row.ParticipantKey()] = struct{}{}
	}

	seen := make(map[models.ParticipantKey]struct{}, len(items))
	for _, item := range items {
		key := item.ParticipantKey()
		if _, dup := enrolled[key]; dup {
			skipped = append(skipped, item)
			continue
		}
		if _, dup := seen[key]; dup {
			skipped = append(skipped, item)
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, item)
	}
	return kept, skipped
}

// distinctProgramIDs returns the program ids of the items in first-seen order.
func distinctProgramIDs(items []models.CartItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProgramID]; ok {
			continue
		}
		seen[item.ProgramID] = struct{}{}
		ids = append(ids, item.ProgramID)
	}
	return ids
}
