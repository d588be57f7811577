package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/types"
)

// CartItem is one program line inside a cart. A nil DependentProfileID means
// the account holder themselves is the participant.
type CartItem struct {
	ID                 uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	CartID             uuid.UUID              `gorm:"column:cart_id;type:uuid;not null;index"`
	ProgramID          uuid.UUID              `gorm:"column:program_id;type:uuid;not null"`
	DependentProfileID *uuid.UUID             `gorm:"column:dependent_profile_id;type:uuid"`
	PriceCents         int                    `gorm:"column:price_cents;not null;default:0"`
	LessonSelection    *types.LessonSelection `gorm:"column:lesson_selection;type:jsonb;serializer:json"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (i *CartItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ParticipantKey identifies the (program, participant) pair an item targets.
func (i CartItem) ParticipantKey() ParticipantKey {
	key := ParticipantKey{ProgramID: i.ProgramID}
	if i.DependentProfileID != nil {
		key.ProfileID = *i.DependentProfileID
	}
	return key
}

// ParticipantKey is the comparable (program, participant) identity used by
// the duplicate filter. A zero ProfileID denotes the account holder.
type ParticipantKey struct {
	ProgramID uuid.UUID
	ProfileID uuid.UUID
}
