package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nadiaferrer/studiohub-backend/pkg/types"
)

// DependentProfile is a named participant owned by an account holder, e.g. a
// child enrolled by a parent. Ownership is verified before any enrollment
// referencing the profile is written.
type DependentProfile struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	AccountID uuid.UUID  `gorm:"column:account_id;type:uuid;not null;index"`
	FirstName string     `gorm:"column:first_name;not null"`
	LastName  string     `gorm:"column:last_name;not null"`
	BirthDate *time.Time `gorm:"column:birth_date"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (p *DependentProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Snapshot copies the dependent's identifying data into a participant
// snapshot. Contact and address fields come from the owning account since
// dependents have no contact data of their own.
func (p *DependentProfile) Snapshot(owner *Account) types.ParticipantSnapshot {
	snap := types.ParticipantSnapshot{
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
	if p.BirthDate != nil {
		snap.BirthDate = p.BirthDate.Format("2006-01-02")
	}
	if owner != nil {
		snap.Email = owner.Email
		if owner.Phone != nil {
			snap.Phone = *owner.Phone
		}
		snap.AddrLine1 = owner.AddrLine1
		snap.City = owner.City
		snap.State = owner.State
		snap.PostalCode = owner.PostalCode
		snap.Country = owner.Country
	}
	return snap
}
