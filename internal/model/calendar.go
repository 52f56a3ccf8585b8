package model

import (
	"fmt"
	"time"
)

// DayLayout is the format of persisted day keys.
const DayLayout = "2006-01-02"

// Calendar normalises timestamps to calendar days in the user's location.
type Calendar struct {
	Loc *time.Location
}

// NewCalendar loads an IANA zone name. Empty or "Local" means the system zone.
func NewCalendar(timezone string) (Calendar, error) {
	if timezone == "" || timezone == "Local" {
		return Calendar{Loc: time.Local}, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Calendar{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return Calendar{Loc: loc}, nil
}

func (c Calendar) location() *time.Location {
	if c.Loc == nil {
		return time.Local
	}
	return c.Loc
}

// StartOfDay truncates t to local midnight.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.location())
}

// DayKey is the persisted form of t's calendar day.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.location()).Format(DayLayout)
}

// ParseDay reads a YYYY-MM-DD key as local midnight.
func (c Calendar) ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, c.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

func (c Calendar) SameDay(a, b time.Time) bool {
	return c.DayKey(a) == c.DayKey(b)
}

// After reports whether a's day is strictly later than b's day.
func (c Calendar) After(a, b time.Time) bool {
	return c.StartOfDay(a).After(c.StartOfDay(b))
}

// Weekday is the local calendar weekday of t.
func (c Calendar) Weekday(t time.Time) Weekday {
	return WeekdayOf(t.In(c.location()))
}
