package model

import "time"

// PushSubscription holds a supervisor's browser push subscription for
// rotation-expiry alerts. An empty Area subscribes to the whole floor.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Area      string    `gorm:"size:64;index"`
	CreatedAt time.Time `gorm:"not null"`
}
