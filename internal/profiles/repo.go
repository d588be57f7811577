package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
)

// Repository loads account holders and their dependent profiles.
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

// FindAccountByID returns the account-holder record.
func (r *Repository) FindAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// ListDependentsByIDs returns the dependent profiles for the given ids,
// regardless of owner. Ownership is the caller's check to make.
func (r *Repository) ListDependentsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.DependentProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.DependentProfile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
