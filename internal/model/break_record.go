package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BreakType distinguishes a short break from a meal break.
type BreakType string

const (
	BreakShort BreakType = "break"
	BreakMeal  BreakType = "meal"
)

// Default break durations in minutes.
const (
	DefaultBreakMinutes = 15
	DefaultMealMinutes  = 30
)

// ExpectedMinutes returns the standard duration for the break type.
func (b BreakType) ExpectedMinutes() int {
	if b == BreakMeal {
		return DefaultMealMinutes
	}
	return DefaultBreakMinutes
}

// BreakRecord tracks one break or meal period. At most one open record
// (nil EndTime) exists per dealer; only the break monitor and the
// manual return handler close it.
type BreakRecord struct {
	ID              string    `gorm:"primaryKey;size:36"`
	DealerID        string    `gorm:"size:36;index;not null"`
	Type            BreakType `gorm:"size:16;not null"`
	StartTime       time.Time `gorm:"not null"`
	EndTime         *time.Time
	DurationMinutes int  `gorm:"not null"`
	Compliant       bool `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (b *BreakRecord) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Expected returns the allotted duration of the break.
func (b *BreakRecord) Expected() time.Duration {
	minutes := b.DurationMinutes
	if minutes <= 0 {
		minutes = b.Type.ExpectedMinutes()
	}
	return time.Duration(minutes) * time.Minute
}
