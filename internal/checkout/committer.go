package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/db"
	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
	"github.com/nadiaferrer/studiohub-backend/pkg/types"
)

// activeParticipantConstraint is the partial unique index that backstops the
// at-most-one-active invariant when two commitments race past admission.
const activeParticipantConstraint = "uq_enrollments_active_participant"

// commitEnrollments executes the write phase. Every decision was made up
// front, so this only materializes rows: inserts for admitted items and
// in-place promotions for waitlist upgrades. A unique violation here means a
// concurrent commitment won the last seat; it surfaces as a conflict, not an
// internal error, and rolls back the whole transaction.
func (s *service) commitEnrollments(
	ctx context.Context,
	repos txRepos,
	accountID uuid.UUID,
	items []models.CartItem,
	decisions map[models.ParticipantKey]admissionAction,
	snapshots map[models.ParticipantKey]types.ParticipantSnapshot,
) (committed []models.Enrollment, upgradedCount int, cerr *pkgerrors.Error) {
	now := time.Now()

	for _, item := range items {
		key := item.ParticipantKey()
		snap := snapshots[key]

		if decisions[key] == actionUpgrade {
			row, err := repos.enrollments.FindWaitlistAccepted(ctx, accountID, item.ProgramID)
			switch {
			case err == nil:
				row.Status = enums.EnrollmentStatusActive
				row.Snapshot = snap
				row.LessonSelection = item.LessonSelection
				row.PriceCents = item.PriceCents
				row.EnrolledAt = &now
				if err := repos.enrollments.Save(ctx, row); err != nil {
					return nil, 0, mapWriteError(err, item.ProgramID)
				}
				committed = append(committed, *row)
				upgradedCount++
				continue
			case errors.Is(err, gorm.ErrRecordNotFound):
				// The waitlist row vanished between decision and write;
				// fall through to a plain insert for the seat.
			default:
				return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "waitlist lookup failed")
			}
		}

		row := models.Enrollment{
			ProgramID:          item.ProgramID,
			AccountID:          accountID,
			DependentProfileID: item.DependentProfileID,
			Status:             enums.EnrollmentStatusActive,
			Snapshot:           snap,
			LessonSelection:    item.LessonSelection,
			PriceCents:         item.PriceCents,
			EnrolledAt:         &now,
		}
		if err := repos.enrollments.Create(ctx, &row); err != nil {
			return nil, 0, mapWriteError(err, item.ProgramID)
		}
		committed = append(committed, row)
	}
	return committed, upgradedCount, nil
}

func mapWriteError(err error, programID uuid.UUID) *pkgerrors.Error {
	if db.IsUniqueViolation(err, activeParticipantConstraint) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "participant already enrolled").
			WithDetails(map[string]any{"program_id": programID.String()})
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enrollment write failed")
}
