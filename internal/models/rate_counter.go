package models

import "time"

// RateCounter is a fixed-window request counter shared by every server instance through the database.
type RateCounter struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Count     int64     `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"index;not null"`
	UpdatedAt time.Time
}
