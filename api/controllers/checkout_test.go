package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadiaferrer/studiohub-backend/api/middleware"
	"github.com/nadiaferrer/studiohub-backend/internal/checkout"
	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
	pkgerrors "github.com/nadiaferrer/studiohub-backend/pkg/errors"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
)

type stubCheckoutService struct {
	result *checkout.CommitResult
	err    error

	gotAccountID uuid.UUID
	gotCartID    uuid.UUID
}

func (s *stubCheckoutService) Complete(_ context.Context, accountID, cartID uuid.UUID) (*checkout.CommitResult, error) {
	s.gotAccountID = accountID
	s.gotCartID = cartID
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func checkoutRequest(accountID string, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/complete", strings.NewReader(body))
	if accountID != "" {
		req = req.WithContext(middleware.WithAccountID(req.Context(), accountID))
	}
	return req
}

func TestCompleteCheckoutSuccess(t *testing.T) {
	accountID := uuid.New()
	cartID := uuid.New()
	stub := &stubCheckoutService{
		result: &checkout.CommitResult{
			CartID: cartID,
			Enrollments: []models.Enrollment{
				{ID: uuid.New(), ProgramID: uuid.New(), AccountID: accountID, Status: enums.EnrollmentStatusActive},
			},
			InsertedCount: 1,
		},
	}
	ctrl := NewCheckoutController(stub, testLogger())

	rec := httptest.NewRecorder()
	ctrl.Complete(rec, checkoutRequest(accountID.String(), `{"cart_id":"`+cartID.String()+`"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, accountID, stub.gotAccountID)
	assert.Equal(t, cartID, stub.gotCartID)

	var envelope struct {
		Data CompleteCheckoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "enrollment confirmed", envelope.Data.Message)
	require.Len(t, envelope.Data.Inserted, 1)
	assert.Equal(t, "active", envelope.Data.Inserted[0].Status)
}

func TestCompleteCheckoutRequiresAuth(t *testing.T) {
	ctrl := NewCheckoutController(&stubCheckoutService{}, testLogger())

	rec := httptest.NewRecorder()
	ctrl.Complete(rec, checkoutRequest("", `{"cart_id":"`+uuid.NewString()+`"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompleteCheckoutRejectsBadBody(t *testing.T) {
	ctrl := NewCheckoutController(&stubCheckoutService{}, testLogger())

	rec := httptest.NewRecorder()
	ctrl.Complete(rec, checkoutRequest(uuid.NewString(), `{"cart_id":"not-a-uuid"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompleteCheckoutConflictPassthrough(t *testing.T) {
	programID := uuid.New()
	stub := &stubCheckoutService{
		err: pkgerrors.New(pkgerrors.CodeConflict, "program is full").
			WithDetails(map[string]any{"program_id": programID.String()}),
	}
	ctrl := NewCheckoutController(stub, testLogger())

	rec := httptest.NewRecorder()
	ctrl.Complete(rec, checkoutRequest(uuid.NewString(), `{"cart_id":"`+uuid.NewString()+`"}`))

	require.Equal(t, http.StatusConflict, rec.Code)

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, string(pkgerrors.CodeConflict), envelope.Error.Code)
	assert.Equal(t, "program is full", envelope.Error.Message)
	assert.Equal(t, programID.String(), envelope.Error.Details["program_id"])
}
