package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TableStatus is the operational state of a game table.
type TableStatus string

const (
	TableOpen        TableStatus = "open"
	TableClosed      TableStatus = "closed"
	TableNeedsDealer TableStatus = "needs_dealer"
	TableLocked      TableStatus = "locked"
)

// HighLimitMinBet is the minimum-bet threshold at which a table counts
// as high limit and calls for a senior dealer.
const HighLimitMinBet = 100

// DefaultRotationMinutes applies when a table has no explicit rotation
// interval.
const DefaultRotationMinutes = 20

// GameTable is a physical table on the floor. TableNumber is the unique
// display key and encodes the game type in its letter prefix
// (e.g. BJ-101, R101, CR301).
type GameTable struct {
	ID              string      `gorm:"primaryKey;size:36"`
	TableNumber     string      `gorm:"uniqueIndex;size:16;not null"`
	GameType        GameType    `gorm:"size:32;not null"`
	Status          TableStatus `gorm:"size:32;not null;index"`
	MinBet          int         `gorm:"not null"`
	MaxBet          int
	RequiredDealers int    `gorm:"not null;default:1"`
	Area            string `gorm:"size:64"`
	RotationMinutes int    // 0 means DefaultRotationMinutes
	Locked          bool   `gorm:"not null;default:false"` // excluded from sweep and expiry automation
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (t *GameTable) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// HighLimit reports whether the table's minimum bet meets the
// high-limit threshold.
func (t *GameTable) HighLimit() bool {
	return t.MinBet >= HighLimitMinBet
}

// RotationLimit returns the table's rotation interval, falling back to
// the floor default.
func (t *GameTable) RotationLimit() time.Duration {
	minutes := t.RotationMinutes
	if minutes <= 0 {
		minutes = DefaultRotationMinutes
	}
	return time.Duration(minutes) * time.Minute
}
