package model

import "time"

// Record says a tracker was completed on a calendar day. (TrackerID, Day)
// is unique.
type Record struct {
	ID        uint     `gorm:"primaryKey"`
	TrackerID string   `gorm:"size:36;not null;uniqueIndex:idx_record_tracker_day"`
	Day       string   `gorm:"size:10;not null;uniqueIndex:idx_record_tracker_day"`
	Tracker   *Tracker `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (Record) TableName() string {
	return "tracker_records"
}

// RecordKey is the identity of a Record.
type RecordKey struct {
	TrackerID string
	Day       string
}
