package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment places one dealer on one table for one rotation. A nil
// EndTime plus IsCurrent marks the open assignment; at most one such
// row may exist per dealer and per table. Rows are never mutated after
// EndTime is set.
type Assignment struct {
	ID          string    `gorm:"primaryKey;size:36"`
	DealerID    string    `gorm:"size:36;index;not null"`
	TableID     string    `gorm:"size:36;index;not null"`
	StartTime   time.Time `gorm:"not null"`
	EndTime     *time.Time
	IsCurrent   bool `gorm:"not null;index"`
	AutoCreated bool `gorm:"not null"` // true when the sweep or expiry monitor created it
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Open reports whether the assignment is still active.
func (a *Assignment) Open() bool {
	return a.IsCurrent && a.EndTime == nil
}
