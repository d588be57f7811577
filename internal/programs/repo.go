package programs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
)

// Repository is the read-only program surface used by admission control.
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

// FindByIDForUpdate loads one program and, on postgres, takes a row lock so
// concurrent commitments for the same program serialize at the admission
// decision. sqlite has a single writer and does not support FOR UPDATE.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var program models.Program
	if err := q.Where("id = ?", id).First(&program).Error; err != nil {
		return nil, err
	}
	return &program, nil
}
