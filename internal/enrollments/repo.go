package enrollments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
)

// Repository owns enrollment persistence. Admission counts, duplicate
// lookups, row creation and waitlist promotion all go through it.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListActiveForAccount returns the account's active enrollments across the
// given programs, covering both the holder and their dependents. The
// duplicate filter compares these against cart items by participant key.
func (r *Repository) ListActiveForAccount(ctx context.Context, accountID uuid.UUID, programIDs []uuid.UUID) ([]models.Enrollment, error) {
	if len(programIDs) == 0 {
		return nil, nil
	}
	var rows []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ? AND program_id IN ?",
			accountID, enums.EnrollmentStatusActive, programIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountActive returns the number of active enrollments in a program. Called
// with the program row locked so the count cannot drift before the insert.
func (r *Repository) CountActive(ctx context.Context, programID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("program_id = ? AND status = ?", programID, enums.EnrollmentStatusActive).
		Count(&count).Error
	return count, err
}

// FindWaitlistAccepted returns the account holder's own waitlist_accepted row
// for the program, or gorm.ErrRecordNotFound. Dependents never hold one.
func (r *Repository) FindWaitlistAccepted(ctx context.Context, accountID, programID uuid.UUID) (*models.Enrollment, error) {
	var row models.Enrollment
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND program_id = ? AND status = ? AND dependent_profile_id IS NULL",
			accountID, programID, enums.EnrollmentStatusWaitlistAccepted).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new enrollment row.
func (r *Repository) Create(ctx context.Context, row *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// Save persists updates to an existing row; used by waitlist promotion.
func (r *Repository) Save(ctx context.Context, row *models.Enrollment) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// ListByAccount returns every enrollment held by the account, newest first.
func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Enrollment, error) {
	var rows []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
