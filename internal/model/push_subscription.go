package model

import "time"

// PushSubscription holds a browser push subscription registered by an admin
// dashboard. Every subscription receives a notification when a new party
// joins the waitlist.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
