package model

import "time"

// Table status values.
const (
	TableStatusVacant   = "vacant"
	TableStatusOccupied = "occupied"
)

// Table represents a physical table in the dining room.
type Table struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:128"`
	Capacity   int    `gorm:"not null"`
	Status     string `gorm:"size:16;not null;default:vacant"`
	TimeSeated *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
