package model

import "time"

// Customer is a single waitlist entry. It exists only while the party is
// waiting: a successful allocation deletes the row.
type Customer struct {
	ID              uint      `gorm:"primaryKey"`
	Name            string    `gorm:"size:256;not null"`
	PartySize       int       `gorm:"not null"`
	ContactNumber   string    `gorm:"size:64;not null"`
	ReservationTime time.Time `gorm:"not null;index"`
	CreatedAt       time.Time `gorm:"not null"`
}
