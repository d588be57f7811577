package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
	"github.com/nadiaferrer/studiohub-backend/pkg/types"
)

// Enrollment is the durable record produced by the commitment engine. Rows
// are created active by the engine or promoted in place from a pre-existing
// waitlist_accepted row; no other code path writes them.
//
// A partial unique index on (program_id, account_id, coalesce(profile_id))
// where status = 'active' backstops the at-most-one-active invariant; the
// migration in pkg/migrate/migrations names it uq_enrollments_active_participant.
type Enrollment struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	ProgramID          uuid.UUID                 `gorm:"column:program_id;type:uuid;not null;index"`
	AccountID          uuid.UUID                 `gorm:"column:account_id;type:uuid;not null;index"`
	DependentProfileID *uuid.UUID                `gorm:"column:dependent_profile_id;type:uuid"`
	Status             enums.EnrollmentStatus    `gorm:"column:status;not null"`
	Snapshot           types.ParticipantSnapshot `gorm:"column:snapshot;type:jsonb;serializer:json;not null"`
	LessonSelection    *types.LessonSelection    `gorm:"column:lesson_selection;type:jsonb;serializer:json"`
	PriceCents         int                       `gorm:"column:price_cents;not null;default:0"`
	EnrolledAt         *time.Time                `gorm:"column:enrolled_at"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (e *Enrollment) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ParticipantKey identifies the (program, participant) pair this row covers.
func (e Enrollment) ParticipantKey() ParticipantKey {
	key := ParticipantKey{ProgramID: e.ProgramID}
	if e.DependentProfileID != nil {
		key.ProfileID = *e.DependentProfileID
	}
	return key
}
