package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nadiaferrer/studiohub-backend/api/middleware"
	"github.com/nadiaferrer/studiohub-backend/api/responses"
	"github.com/nadiaferrer/studiohub-backend/api/validators"
	"github.com/nadiaferrer/studiohub-backend/internal/checkout"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
)

// CompleteCheckoutRequest is the body of POST /api/v1/checkout/complete.
type CompleteCheckoutRequest struct {
	CartID string `json:"cart_id" validate:"required,uuid4"`
}

// CompleteCheckoutResponse reports what the commitment wrote.
type CompleteCheckoutResponse struct {
	Message           string           `json:"message"`
	Inserted          []EnrollmentView `json:"inserted"`
	UpgradedCount     int              `json:"upgraded_count"`
	SkippedProgramIDs []string         `json:"skipped_program_ids,omitempty"`
}

// CheckoutController exposes the cart commitment endpoint.
type CheckoutController struct {
	svc  checkout.Service
	logg *logger.Logger
}

// NewCheckoutController wires the checkout endpoint.
func NewCheckoutController(svc checkout.Service, logg *logger.Logger) *CheckoutController {
	return &CheckoutController{svc: svc, logg: logg}
}

// Complete commits the caller's active cart into enrollments.
func (c *CheckoutController) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := uuid.Parse(middleware.AccountIDFromContext(ctx))
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req CompleteCheckoutRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart_id must be a valid uuid"))
		return
	}

	result, err := c.svc.Complete(ctx, accountID, cartID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	skipped := make([]string, 0, len(result.SkippedProgramIDs))
	for _, id := range result.SkippedProgramIDs {
		skipped = append(skipped, id.String())
	}
	responses.WriteSuccess(w, CompleteCheckoutResponse{
		Message:           "enrollment confirmed",
		Inserted:          enrollmentViews(result.Enrollments),
		UpgradedCount:     result.UpgradedCount,
		SkippedProgramIDs: skipped,
	})
}
