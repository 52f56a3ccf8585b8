package model

import (
	"strings"
	"time"
)

// Tracker is a habit (non-empty schedule) or a one-off task (empty schedule
// plus OneOffDay).
type Tracker struct {
	ID         string   `gorm:"primaryKey;size:36"`
	Name       string   `gorm:"not null"`
	Color      string   `gorm:"not null"`
	Emoji      string   `gorm:"not null"`
	Schedule   Schedule `gorm:"column:schedule_bits;type:integer;not null"`
	OneOffDay  *string  `gorm:"size:10"`
	CategoryID uint     `gorm:"index;not null"`
	Position   int64    `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (t Tracker) IsOneOff() bool {
	return t.Schedule.IsEmpty()
}

// DueOn reports whether the tracker is shown on day.
func (t Tracker) DueOn(cal Calendar, day time.Time) bool {
	if t.Schedule.IsEmpty() {
		return t.OneOffDay != nil && *t.OneOffDay == cal.DayKey(day)
	}
	return t.Schedule.Contains(cal.Weekday(day))
}

// Validate checks the attributes a store write depends on.
func (t Tracker) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !ValidColor(t.Color) {
		return &ValidationError{Field: "color", Reason: "not in palette: " + t.Color}
	}
	if !ValidEmoji(t.Emoji) {
		return &ValidationError{Field: "emoji", Reason: "not in palette: " + t.Emoji}
	}
	if t.Schedule.IsEmpty() && (t.OneOffDay == nil || *t.OneOffDay == "") {
		return &ValidationError{Field: "schedule", Reason: "one-off tracker needs a date"}
	}
	return nil
}
