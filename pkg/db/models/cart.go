package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/enums"
)

// Cart is the account-owned shopping cart. It transitions to completed
// exactly once, by the commitment engine, after enrollments are durable.
type Cart struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	AccountID   uuid.UUID        `gorm:"column:account_id;type:uuid;not null;index"`
	Status      enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	CompletedAt *time.Time       `gorm:"column:completed_at"`
	Items       []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
