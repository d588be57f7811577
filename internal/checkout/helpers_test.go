package checkout

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/internal/cart"
	"github.com/nadiaferrer/studiohub-backend/internal/enrollments"
	"github.com/nadiaferrer/studiohub-backend/internal/profiles"
	"github.com/nadiaferrer/studiohub-backend/internal/programs"
	"github.com/nadiaferrer/studiohub-backend/pkg/db"
	"github.com/nadiaferrer/studiohub-backend/pkg/db/models"
	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
	"github.com/nadiaferrer/studiohub-backend/pkg/outbox"
)

type fixture struct {
	conn *gorm.DB
	svc  Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:checkout_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.Account{},
		&models.DependentProfile{},
		&models.Program{},
		&models.Cart{},
		&models.CartItem{},
		&models.Enrollment{},
		&models.OutboxEvent{},
	))
	require.NoError(t, conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_enrollments_active_participant
		ON enrollments (program_id, account_id, COALESCE(dependent_profile_id, '00000000-0000-0000-0000-000000000000'))
		WHERE status = 'active'
	`).Error)

	client := db.NewFromGorm(conn)
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})

	svc := NewService(
		client,
		cart.NewRepository(conn),
		programs.NewRepository(conn),
		profiles.NewRepository(conn),
		enrollments.NewRepository(conn),
		outbox.NewService(outbox.NewRepository(conn), logg),
		nil,
		logg,
	)

	return &fixture{conn: conn, svc: svc}
}

func (f *fixture) seedAccount(t *testing.T) *models.Account {
	t.Helper()
	birth := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	account := models.Account{
		Email:      fmt.Sprintf("holder-%s@example.com", uuid.NewString()[:8]),
		FirstName:  "Maya",
		LastName:   "Holder",
		BirthDate:  &birth,
		AddrLine1:  "12 Studio Lane",
		City:       "Portland",
		State:      "OR",
		PostalCode: "97201",
		Country:    "US",
		IsActive:   true,
	}
	require.NoError(t, f.conn.Create(&account).Error)
	return &account
}

func (f *fixture) seedIncompleteAccount(t *testing.T) *models.Account {
	t.Helper()
	account := models.Account{
		Email:     fmt.Sprintf("sparse-%s@example.com", uuid.NewString()[:8]),
		FirstName: "Nico",
		LastName:  "Sparse",
		IsActive:  true,
	}
	require.NoError(t, f.conn.Create(&account).Error)
	return &account
}

func (f *fixture) seedDependent(t *testing.T, owner *models.Account) *models.DependentProfile {
	t.Helper()
	birth := time.Date(2015, 9, 1, 0, 0, 0, 0, time.UTC)
	profile := models.DependentProfile{
		AccountID: owner.ID,
		FirstName: "Tess",
		LastName:  "Kid",
		BirthDate: &birth,
	}
	require.NoError(t, f.conn.Create(&profile).Error)
	return &profile
}

func (f *fixture) seedProgram(t *testing.T, capacity int, waitlist bool) *models.Program {
	t.Helper()
	program := models.Program{
		Title:           "Ballet I",
		Capacity:        capacity,
		WaitlistEnabled: waitlist,
	}
	require.NoError(t, f.conn.Create(&program).Error)
	return &program
}

func (f *fixture) seedCart(t *testing.T, accountID uuid.UUID, items ...models.CartItem) *models.Cart {
	t.Helper()
	record := models.Cart{AccountID: accountID, Status: enums.CartStatusActive}
	require.NoError(t, f.conn.Create(&record).Error)
	for i := range items {
		items[i].CartID = record.ID
		require.NoError(t, f.conn.Create(&items[i]).Error)
	}
	return &record
}

func (f *fixture) seedActiveEnrollment(t *testing.T, accountID, programID uuid.UUID, dependentID *uuid.UUID) *models.Enrollment {
	t.Helper()
	now := time.Now()
	row := models.Enrollment{
		ProgramID:          programID,
		AccountID:          accountID,
		DependentProfileID: dependentID,
		Status:             enums.EnrollmentStatusActive,
		EnrolledAt:         &now,
	}
	require.NoError(t, f.conn.Create(&row).Error)
	return &row
}

func (f *fixture) seedWaitlistAccepted(t *testing.T, accountID, programID uuid.UUID) *models.Enrollment {
	t.Helper()
	row := models.Enrollment{
		ProgramID: programID,
		AccountID: accountID,
		Status:    enums.EnrollmentStatusWaitlistAccepted,
	}
	require.NoError(t, f.conn.Create(&row).Error)
	return &row
}

func (f *fixture) countEnrollments(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.conn.Model(&models.Enrollment{}).Count(&count).Error)
	return count
}

func (f *fixture) reloadCart(t *testing.T, id uuid.UUID) *models.Cart {
	t.Helper()
	var record models.Cart
	require.NoError(t, f.conn.Preload("Items").Where("id = ?", id).First(&record).Error)
	return &record
}
