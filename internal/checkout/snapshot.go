package checkout

import (
	"github.com/google/uuid"

	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
	"github.com/nadiaferrer/studiohub-backend/pkg/types"
)

// holderParticipant labels the account holder in incomplete-profile details,
// where dependent participants are labeled by profile id.
const holderParticipant = "account_holder"

// resolveSnapshots freezes one participant snapshot per item to commit and
// rejects the whole cart when any participant fails the completeness check.
// Snapshots are taken once here; the committer never re-reads live profiles.
func resolveSnapshots(
	account *models.Account,
	dependents map[uuid.UUID]models.DependentProfile,
	items []models.CartItem,
) (map[models.ParticipantKey]types.ParticipantSnapshot, *pkgerrors.Error) {
	snapshots := make(map[models.ParticipantKey]types.ParticipantSnapshot, len(items))
	missing := make(map[string][]string)

	for _, item := range items {
		key := item.ParticipantKey()
		if _, done := snapshots[key]; done {
			continue
		}

		var snap types.ParticipantSnapshot
		label := holderParticipant
		if item.DependentProfileID == nil {
			snap = account.Snapshot()
		} else {
			profile := dependents[*item.DependentProfileID]
			snap = profile.Snapshot(account)
			label = profile.ID.String()
		}

		if fields := snap.MissingFields(); len(fields) > 0 {
			if _, reported := missing[label]; !reported {
				missing[label] = fields
			}
			continue
		}
		snapshots[key] = snap
	}

	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "participant profile is incomplete").
			WithDetails(map[string]any{"missing_fields": missing})
	}
	return snapshots, nil
}
