package enrollments

import (
	"context"

	"github.com/google/uuid"

	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
)

// Service is the read surface for an account's enrollments.
type Service interface {
	ListForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Enrollment, error)
}

type service struct {
	repo *Repository
}

// NewService wires the enrollment read service.
func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Enrollment, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account required")
	}
	rows, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enrollment lookup failed")
	}
	return rows, nil
}
