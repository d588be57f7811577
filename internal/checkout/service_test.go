package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
)

func TestCompleteCommitsSingleItem(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	program := f.seedProgram(t, 10, false)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID, PriceCents: 12000})

	result, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.NoError(t, err)
	require.Len(t, result.Enrollments, 1)
	assert.Equal(t, 1, result.InsertedCount)
	assert.Equal(t, 0, result.UpgradedCount)

	row := result.Enrollments[0]
	assert.Equal(t, enums.EnrollmentStatusActive, row.Status)
	assert.Equal(t, account.ID, row.AccountID)
	assert.Nil(t, row.DependentProfileID)
	assert.Equal(t, 12000, row.PriceCents)
	assert.NotNil(t, row.EnrolledAt)
	assert.Equal(t, "Maya", row.Snapshot.FirstName)
	assert.Equal(t, "12 Studio Lane", row.Snapshot.AddrLine1)

	reloaded := f.reloadCart(t, record.ID)
	assert.Equal(t, enums.CartStatusCompleted, reloaded.Status)
	assert.NotNil(t, reloaded.CompletedAt)
	assert.Empty(t, reloaded.Items)

	var outboxCount int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).
		Where("event_type = ?", enums.EventEnrollmentCommitted).
		Count(&outboxCount).Error)
	assert.EqualValues(t, 1, outboxCount)
}

func TestCompleteSnapshotSurvivesProfileEdits(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	program := f.seedProgram(t, 0, false)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID})

	result, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("first_name", "Renamed").Error)

	var row models.Enrollment
	require.NoError(t, f.conn.Where("id = ?", result.Enrollments[0].ID).First(&row).Error)
	assert.Equal(t, "Maya", row.Snapshot.FirstName)
}

func TestCompleteCartNotFound(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)

	_, err := f.svc.Complete(context.Background(), account.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCompleteCartNotOwned(t *testing.T) {
	f := newFixture(t)
	owner := f.seedAccount(t)
	other := f.seedAccount(t)
	program := f.seedProgram(t, 10, false)
	record := f.seedCart(t, owner.ID, models.CartItem{ProgramID: program.ID})

	_, err := f.svc.Complete(context.Background(), other.ID, record.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
	assert.EqualValues(t, 0, f.countEnrollments(t))
}

func TestCompleteCartNotActive(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	program := f.seedProgram(t, 10, false)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID})

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.NoError(t, err)

	// Resubmitting the same cart must fail fast on cart state.
	_, err = f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.EqualValues(t, 1, f.countEnrollments(t))
}

func TestCompleteEmptyCart(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	record := f.seedCart(t, account.ID)

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCompleteAllDuplicates(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	program := f.seedProgram(t, 10, false)
	f.seedActiveEnrollment(t, account.ID, program.ID, nil)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID})

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "duplicate_program_ids")
	assert.EqualValues(t, 1, f.countEnrollments(t))
}

func TestCompleteMixedDuplicateAndNew(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	enrolled := f.seedProgram(t, 10, false)
	fresh := f.seedProgram(t, 10, false)
	f.seedActiveEnrollment(t, account.ID, enrolled.ID, nil)
	record := f.seedCart(t, account.ID,
		models.CartItem{ProgramID: enrolled.ID},
		models.CartItem{ProgramID: fresh.ID},
	)

	result, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.NoError(t, err)
	require.Len(t, result.Enrollments, 1)
	assert.Equal(t, fresh.ID, result.Enrollments[0].ProgramID)
	assert.Equal(t, []uuid.UUID{enrolled.ID}, result.SkippedProgramIDs)
}

func TestCompleteDependentAndHolderSameProgram(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	dependent := f.seedDependent(t, account)
	program := f.seedProgram(t, 10, false)
	record := f.seedCart(t, account.ID,
		models.CartItem{ProgramID: program.ID},
		models.CartItem{ProgramID: program.ID, DependentProfileID: &dependent.ID},
	)

	result, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.NoError(t, err)
	assert.Len(t, result.Enrollments, 2)
	assert.EqualValues(t, 2, f.countEnrollments(t))
}

func TestCompleteFullProgramRejected(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	others := []*models.Account{f.seedAccount(t), f.seedAccount(t)}
	program := f.seedProgram(t, 2, false)
	for _, other := range others {
		f.seedActiveEnrollment(t, other.ID, program.ID, nil)
	}
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID})

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, program.ID.String(), details["program_id"])
	assert.EqualValues(t, 2, f.countEnrollments(t))

	reloaded := f.reloadCart(t, record.ID)
	assert.Equal(t, enums.CartStatusActive, reloaded.Status)
	assert.Len(t, reloaded.Items, 1)
}

func TestCompleteManualFullOverride(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	program := f.seedProgram(t, 10, false)
	require.NoError(t, f.conn.Model(&models.Program{}).
		Where("id = ?", program.ID).
		Update("manual_full", true).Error)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID})

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCompleteGroupOvershootCountsAsFull(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	other := f.seedAccount(t)
	first := f.seedDependent(t, account)
	second := f.seedDependent(t, account)
	program := f.seedProgram(t, 3, false)
	otherKid := f.seedDependent(t, other)
	f.seedActiveEnrollment(t, other.ID, program.ID, nil)
	f.seedActiveEnrollment(t, other.ID, program.ID, &otherKid.ID)
	record := f.seedCart(t, account.ID,
		models.CartItem{ProgramID: program.ID, DependentProfileID: &first.ID},
		models.CartItem{ProgramID: program.ID, DependentProfileID: &second.ID},
	)

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.EqualValues(t, 2, f.countEnrollments(t))
}

func TestCompleteWaitlistUpgradeInPlace(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	filler := f.seedAccount(t)
	program := f.seedProgram(t, 1, true)
	f.seedActiveEnrollment(t, filler.ID, program.ID, nil)
	waitlisted := f.seedWaitlistAccepted(t, account.ID, program.ID)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID, PriceCents: 9900})

	result, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.NoError(t, err)
	require.Len(t, result.Enrollments, 1)
	assert.Equal(t, 1, result.UpgradedCount)
	assert.Equal(t, 0, result.InsertedCount)
	assert.Equal(t, waitlisted.ID, result.Enrollments[0].ID)

	var row models.Enrollment
	require.NoError(t, f.conn.Where("id = ?", waitlisted.ID).First(&row).Error)
	assert.Equal(t, enums.EnrollmentStatusActive, row.Status)
	assert.Equal(t, 9900, row.PriceCents)
	assert.NotNil(t, row.EnrolledAt)
	assert.EqualValues(t, 2, f.countEnrollments(t))
}

func TestCompleteWaitlistUpgradeWithFreeSeats(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	program := f.seedProgram(t, 10, true)
	waitlisted := f.seedWaitlistAccepted(t, account.ID, program.ID)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID, PriceCents: 4500})

	result, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.NoError(t, err)
	require.Len(t, result.Enrollments, 1)
	assert.Equal(t, 1, result.UpgradedCount)
	assert.Equal(t, 0, result.InsertedCount)
	assert.Equal(t, waitlisted.ID, result.Enrollments[0].ID)

	// Exactly one row for the (program, holder) pair: the promoted one.
	var rows []models.Enrollment
	require.NoError(t, f.conn.Where("account_id = ? AND program_id = ?", account.ID, program.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, waitlisted.ID, rows[0].ID)
	assert.Equal(t, enums.EnrollmentStatusActive, rows[0].Status)
	assert.Equal(t, 4500, rows[0].PriceCents)
}

func TestCompleteWaitlistRequired(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	filler := f.seedAccount(t)
	program := f.seedProgram(t, 1, true)
	f.seedActiveEnrollment(t, filler.ID, program.ID, nil)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID})

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, program.ID.String(), details["program_id"])
}

func TestCompleteDependentCannotUseHolderWaitlist(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	filler := f.seedAccount(t)
	dependent := f.seedDependent(t, account)
	program := f.seedProgram(t, 1, true)
	f.seedActiveEnrollment(t, filler.ID, program.ID, nil)
	f.seedWaitlistAccepted(t, account.ID, program.ID)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID, DependentProfileID: &dependent.ID})

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCompleteDependentNotOwned(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	stranger := f.seedAccount(t)
	dependent := f.seedDependent(t, stranger)
	program := f.seedProgram(t, 10, false)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID, DependentProfileID: &dependent.ID})

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
	assert.EqualValues(t, 0, f.countEnrollments(t))
}

func TestCompleteIncompleteProfile(t *testing.T) {
	f := newFixture(t)
	account := f.seedIncompleteAccount(t)
	program := f.seedProgram(t, 10, false)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID})

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	missing, ok := details["missing_fields"].(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, missing[holderParticipant], "birth_date")
	assert.Contains(t, missing[holderParticipant], "addr_line1")
	assert.EqualValues(t, 0, f.countEnrollments(t))
}

func TestCompleteRejectionLeavesNoPartialWrites(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	filler := f.seedAccount(t)
	open := f.seedProgram(t, 10, false)
	full := f.seedProgram(t, 1, false)
	f.seedActiveEnrollment(t, filler.ID, full.ID, nil)
	record := f.seedCart(t, account.ID,
		models.CartItem{ProgramID: open.ID},
		models.CartItem{ProgramID: full.ID},
	)

	_, err := f.svc.Complete(context.Background(), account.ID, record.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	var count int64
	require.NoError(t, f.conn.Model(&models.Enrollment{}).
		Where("account_id = ?", account.ID).
		Count(&count).Error)
	assert.EqualValues(t, 0, count)

	reloaded := f.reloadCart(t, record.ID)
	assert.Equal(t, enums.CartStatusActive, reloaded.Status)
}

func TestCompleteSecondCheckoutLosesLastSeat(t *testing.T) {
	f := newFixture(t)
	winner := f.seedAccount(t)
	loser := f.seedAccount(t)
	program := f.seedProgram(t, 1, false)
	winnerCart := f.seedCart(t, winner.ID, models.CartItem{ProgramID: program.ID})
	loserCart := f.seedCart(t, loser.ID, models.CartItem{ProgramID: program.ID})

	_, err := f.svc.Complete(context.Background(), winner.ID, winnerCart.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), loser.ID, loserCart.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.EqualValues(t, 1, f.countEnrollments(t))
}

func TestCompleteLostRaceMapsToConflict(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t)
	program := f.seedProgram(t, 1, false)
	record := f.seedCart(t, account.ID, models.CartItem{ProgramID: program.ID})

	// Slip a competing active row into the transaction after admission has
	// decided but before the engine's own insert, the interleaving a
	// concurrent checkout winning the last seat would produce.
	injected := false
	var injectErr error
	err := f.conn.Callback().Create().Before("gorm:create").Register("competing_checkout", func(tx *gorm.DB) {
		if injected || tx.Statement.Table != "enrollments" {
			return
		}
		injected = true
		injectErr = tx.Session(&gorm.Session{NewDB: true}).Exec(
			`INSERT INTO enrollments (id, program_id, account_id, status, snapshot, price_cents)
			 VALUES (?, ?, ?, 'active', '{}', 0)`,
			uuid.New(), program.ID, account.ID,
		).Error
	})
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), account.ID, record.ID)
	require.True(t, injected)
	require.NoError(t, injectErr)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, program.ID.String(), details["program_id"])

	// Rollback erases the engine's insert and the injected row alike.
	assert.EqualValues(t, 0, f.countEnrollments(t))
	assert.Equal(t, enums.CartStatusActive, f.reloadCart(t, record.ID).Status)
}

func TestMapWriteErrorUniqueViolation(t *testing.T) {
	programID := uuid.New()

	err := mapWriteError(assert.AnError, programID)
	assert.Equal(t, pkgerrors.CodeInternal, err.Code())

	uniqueErr := &fakeUniqueError{}
	mapped := mapWriteError(uniqueErr, programID)
	assert.Equal(t, pkgerrors.CodeConflict, mapped.Code())
	details, ok := mapped.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, programID.String(), details["program_id"])
}

type fakeUniqueError struct{}

func (*fakeUniqueError) Error() string {
	return `duplicate key value violates unique constraint "uq_enrollments_active_participant"`
}
