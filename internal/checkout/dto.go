package checkout

import (
	"github.com/google/uuid"

	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
)

// CommitResult reports what a successful commitment wrote.
type CommitResult struct {
	CartID            uuid.UUID
	Enrollments       []models.Enrollment
	InsertedCount     int
	UpgradedCount     int
	SkippedProgramIDs []uuid.UUID
}

// EnrollmentIDs returns the ids of every committed row, in commit order.
func (r *CommitResult) EnrollmentIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Enrollments))
	for _, row := range r.Enrollments {
		ids = append(ids, row.ID)
	}
	return ids
}
