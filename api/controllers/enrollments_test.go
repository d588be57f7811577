package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadiaferrer/studiohub-backend/api/middleware"
	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
)

type stubEnrollmentService struct {
	rows []models.Enrollment
	err  error
}

func (s *stubEnrollmentService) ListForAccount(context.Context, uuid.UUID) ([]models.Enrollment, error) {
	return s.rows, s.err
}

func TestListEnrollments(t *testing.T) {
	dependentID := uuid.New()
	stub := &stubEnrollmentService{
		rows: []models.Enrollment{
			{ID: uuid.New(), ProgramID: uuid.New(), Status: enums.EnrollmentStatusActive},
			{ID: uuid.New(), ProgramID: uuid.New(), DependentProfileID: &dependentID, Status: enums.EnrollmentStatusWaitlistAccepted},
		},
	}
	ctrl := NewEnrollmentsController(stub, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments", nil)
	req = req.WithContext(middleware.WithAccountID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	ctrl.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Enrollments []EnrollmentView `json:"enrollments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Enrollments, 2)
	assert.Equal(t, "waitlist_accepted", envelope.Data.Enrollments[1].Status)
	require.NotNil(t, envelope.Data.Enrollments[1].DependentProfileID)
	assert.Equal(t, dependentID.String(), *envelope.Data.Enrollments[1].DependentProfileID)
}

func TestListEnrollmentsRequiresAuth(t *testing.T) {
	ctrl := NewEnrollmentsController(&stubEnrollmentService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollments", nil)
	rec := httptest.NewRecorder()
	ctrl.List(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
