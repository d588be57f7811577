package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nadiaferrer/studiohub-backend/api/middleware"
	"github.com/nadiaferrer/studiohub-backend/api/responses"
	"github.com/nadiaferrer/studiohub-backend/internal/enrollments"
	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
	"github.com/nadiaferrer/studiohub-backend/pkg/types"
)

// EnrollmentView is the wire shape of one enrollment row.
type EnrollmentView struct {
	ID                 string                    `json:"id"`
	ProgramID          string                    `json:"program_id"`
	DependentProfileID *string                   `json:"dependent_profile_id,omitempty"`
	Status             string                    `json:"status"`
	Participant        types.ParticipantSnapshot `json:"participant"`
	LessonSelection    *types.LessonSelection    `json:"lesson_selection,omitempty"`
	PriceCents         int                       `json:"price_cents"`
	EnrolledAt         *time.Time                `json:"enrolled_at,omitempty"`
}

func enrollmentViews(rows []models.Enrollment) []EnrollmentView {
	views := make([]EnrollmentView, 0, len(rows))
	for _, row := range rows {
		view := EnrollmentView{
			ID:              row.ID.String(),
			ProgramID:       row.ProgramID.String(),
			Status:          row.Status.String(),
			Participant:     row.Snapshot,
			LessonSelection: row.LessonSelection,
			PriceCents:      row.PriceCents,
			EnrolledAt:      row.EnrolledAt,
		}
		if row.DependentProfileID != nil {
			id := row.DependentProfileID.String()
			view.DependentProfileID = &id
		}
		views = append(views, view)
	}
	return views
}

// EnrollmentsController exposes the account's enrollment listing.
type EnrollmentsController struct {
	svc  enrollments.Service
	logg *logger.Logger
}

// NewEnrollmentsController wires the enrollment read endpoint.
func NewEnrollmentsController(svc enrollments.Service, logg *logger.Logger) *EnrollmentsController {
	return &EnrollmentsController{svc: svc, logg: logg}
}

// List returns every enrollment held by the authenticated account.
func (c *EnrollmentsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := uuid.Parse(middleware.AccountIDFromContext(ctx))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	rows, err := c.svc.ListForAccount(ctx, accountID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"enrollments": enrollmentViews(rows)})
}
