package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/types"
)

// Account represents the canonical account-holder identity. Contact fields
// feed the participant snapshot when the holder enrolls themselves.
type Account struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email      string     `gorm:"type:text;not null;uniqueIndex"`
	FirstName  string     `gorm:"column:first_name;not null"`
	LastName   string     `gorm:"column:last_name;not null"`
	Phone      *string    `gorm:"column:phone"`
	BirthDate  *time.Time `gorm:"column:birth_date"`
	AddrLine1  string     `gorm:"column:addr_line1"`
	City       string     `gorm:"column:city"`
	State      string     `gorm:"column:state"`
	PostalCode string     `gorm:"column:postal_code"`
	Country    string     `gorm:"column:country"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Snapshot copies the account holder's identifying data into an immutable
// participant snapshot.
func (a *Account) Snapshot() types.ParticipantSnapshot {
	snap := types.ParticipantSnapshot{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Email:      a.Email,
		AddrLine1:  a.AddrLine1,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
	if a.Phone != nil {
		snap.Phone = *a.Phone
	}
	if a.BirthDate != nil {
		snap.BirthDate = a.BirthDate.Format("2006-01-02")
	}
	return snap
}
