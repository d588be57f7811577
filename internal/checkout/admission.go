package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
)

// admissionAction says how a single cart item will be committed.
type admissionAction int

const (
	// actionInsert writes a fresh active enrollment row.
	actionInsert admissionAction = iota
	// actionUpgrade promotes the holder's waitlist_accepted row in place.
	actionUpgrade
)

// decideAdmissions runs the decision phase of the two-phase commitment: every
// item gets an action before any row is written, so a rejection anywhere
// leaves the database untouched. Program rows are read under lock and the
// seat count is taken inside the same transaction.
//
// A holder who already holds a waitlist_accepted row is always promoted in
// place, full program or not; inserting alongside it would leave two rows for
// the same (program, holder).
func (s *service) decideAdmissions(
	ctx context.Context,
	repos txRepos,
	accountID uuid.UUID,
	items []models.CartItem,
) (map[models.ParticipantKey]admissionAction, *pkgerrors.Error) {
	byProgram := make(map[uuid.UUID][]models.CartItem, len(items))
	for _, item := range items {
		byProgram[item.ProgramID] = append(byProgram[item.ProgramID], item)
	}

	decisions := make(map[models.ParticipantKey]admissionAction, len(items))
	for _, programID := range distinctProgramIDs(items) {
		group := byProgram[programID]

		program, err := repos.programs.FindByIDForUpdate(ctx, programID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "program lookup failed")
		}
		activeCount, err := repos.enrollments.CountActive(ctx, programID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seat count failed")
		}

		hasHolderItem := false
		for _, item := range group {
			if item.DependentProfileID == nil {
				hasHolderItem = true
				break
			}
		}
		holderWaitlisted := false
		if hasHolderItem {
			if _, err := repos.enrollments.FindWaitlistAccepted(ctx, accountID, programID); err == nil {
				holderWaitlisted = true
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "waitlist lookup failed")
			}
		}

		// The whole group must fit; partial admission of a cart is never
		// allowed, so a group that would overshoot capacity counts as full.
		full := program.IsFull(activeCount)
		if !full && !program.Unlimited() {
			full = activeCount+int64(len(group)) > int64(program.Capacity)
		}

		if !full {
			for _, item := range group {
				action := actionInsert
				if item.DependentProfileID == nil && holderWaitlisted {
					action = actionUpgrade
				}
				decisions[item.ParticipantKey()] = action
			}
			continue
		}

		if !program.WaitlistEnabled {
			return nil, conflictFor(programID, "program is full")
		}

		// A full waitlist-enabled program only admits the holder's own
		// upgrade; dependents cannot ride on the holder's waitlist spot.
		for _, item := range group {
			if item.DependentProfileID != nil {
				return nil, conflictFor(programID, "waitlist participation required")
			}
		}
		if !holderWaitlisted {
			return nil, conflictFor(programID, "waitlist participation required")
		}
		for _, item := range group {
			decisions[item.ParticipantKey()] = actionUpgrade
		}
	}
	return decisions, nil
}

func conflictFor(programID uuid.UUID, message string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, message).
		WithDetails(map[string]any{"program_id": programID.String()})
}
