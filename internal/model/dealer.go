package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DealerStatus is the current floor status of a dealer.
type DealerStatus string

const (
	DealerAvailable DealerStatus = "available"
	DealerDealing   DealerStatus = "dealing"
	DealerOnBreak   DealerStatus = "on_break"
	DealerOnMeal    DealerStatus = "on_meal"
	DealerOffShift  DealerStatus = "off_shift"
	DealerSentHome  DealerStatus = "sent_home"
	DealerCalledIn  DealerStatus = "called_in"
)

// Dealer represents a floor dealer. Status is only ever written by the
// rotation lifecycle manager; handlers and views read it.
type Dealer struct {
	ID            string       `gorm:"primaryKey;size:36"`
	PersonID      string       `gorm:"size:36;index"`
	Name          string       `gorm:"size:128;not null"`
	Status        DealerStatus `gorm:"size:32;not null;index"`
	Seniority     int          `gorm:"not null"`
	ShiftStart    string       `gorm:"size:8"` // "HH:MM"
	ShiftEnd      string       `gorm:"size:8"`
	PreferredArea string       `gorm:"size:64"`
	Active        bool         `gorm:"not null;default:true"` // soft-removal flag, history keeps referencing the row
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Associations
	Certifications []Certification `gorm:"foreignKey:DealerID"`
}

func (d *Dealer) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// CertifiedFor reports whether the dealer holds an active certification
// for the given game.
func (d *Dealer) CertifiedFor(game GameType) bool {
	for _, c := range d.Certifications {
		if c.GameType == game && c.Active {
			return true
		}
	}
	return false
}

// Certification records that a dealer is qualified to deal one game type.
type Certification struct {
	ID        string   `gorm:"primaryKey;size:36"`
	DealerID  string   `gorm:"size:36;index;not null"`
	GameType  GameType `gorm:"size:32;not null"`
	Active    bool     `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (c *Certification) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
