package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Program is a capacity-bounded class offering. Read-only from the
// commitment engine's perspective; catalog management owns writes.
type Program struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Title           string         `gorm:"column:title;not null"`
	Capacity        int            `gorm:"column:capacity;not null;default:0"`
	WaitlistEnabled bool           `gorm:"column:waitlist_enabled;not null;default:false"`
	ManualFull      bool           `gorm:"column:manual_full;not null;default:false"`
	MeetingDays     pq.StringArray `gorm:"column:meeting_days;type:text[]"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an identifier when the caller did not provide one.
func (p *Program) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Unlimited reports whether the program has no declared seat capacity.
func (p *Program) Unlimited() bool {
	return p.Capacity <= 0
}

// IsFull applies the admission predicate: a manual override always wins,
// otherwise the program is full when active enrollments reach capacity.
func (p *Program) IsFull(activeCount int64) bool {
	if p.ManualFull {
		return true
	}
	if p.Unlimited() {
		return false
	}
	return activeCount >= int64(p.Capacity)
}
