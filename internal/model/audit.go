package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemActorID is the reserved actor recorded for automated actions
// (sweep, expiry monitors).
const SystemActorID = "system"

// AuditAction enumerates the state-changing actions written to the log.
type AuditAction string

const (
	ActionDealerAssigned      AuditAction = "DealerAssigned"
	ActionDealerPushed        AuditAction = "DealerPushed"
	ActionBreakStarted        AuditAction = "BreakStarted"
	ActionBreakEnded          AuditAction = "BreakEnded"
	ActionDealerStatusChanged AuditAction = "DealerStatusChanged"
)

// AuditLog is an append-only record of a state-changing action. Rows
// are never updated or deleted.
type AuditLog struct {
	ID          string      `gorm:"primaryKey;size:36"`
	ActorID     string      `gorm:"size:36;not null;index"`
	Action      AuditAction `gorm:"size:64;not null"`
	EntityType  string      `gorm:"size:32;not null"`
	EntityID    string      `gorm:"size:36;not null;index"`
	Description string      `gorm:"size:512"`
	CreatedAt   time.Time   `gorm:"not null"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
