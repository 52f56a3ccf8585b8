package model

import "time"

// Category groups trackers under a title. The title is the natural key.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	Trackers  []Tracker `gorm:"foreignKey:CategoryID"`
}
