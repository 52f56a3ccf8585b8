package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

const scheduleMask = 1<<7 - 1

// Schedule is the set of weekdays a tracker recurs on. The zero value is
// empty, which marks a one-off tracker.
type Schedule struct {
	bits uint8
}

func NewSchedule(days ...Weekday) Schedule {
	var s Schedule
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// EveryDay is the schedule containing all seven weekdays.
func EveryDay() Schedule {
	return NewSchedule(AllWeekdays...)
}

// DecodeSchedule reads the persisted mask. Bit i is the weekday whose
// Bit() is i, Monday=0 ... Sunday=6.
func DecodeSchedule(bits uint8) (Schedule, error) {
	if bits&^scheduleMask != 0 {
		return Schedule{}, fmt.Errorf("schedule mask %#x has bits outside the week", bits)
	}
	var s Schedule
	for bit := uint8(0); bit < 7; bit++ {
		if bits&(1<<bit) == 0 {
			continue
		}
		d, ok := weekdayFromBit(bit)
		if !ok {
			return Schedule{}, fmt.Errorf("schedule mask bit %d has no weekday", bit)
		}
		s = s.With(d)
	}
	return s, nil
}

// Encode returns the persisted mask.
func (s Schedule) Encode() uint8 {
	return s.bits
}

func (s Schedule) With(d Weekday) Schedule {
	if !d.Valid() {
		return s
	}
	s.bits |= 1 << d.Bit()
	return s
}

func (s Schedule) Without(d Weekday) Schedule {
	if !d.Valid() {
		return s
	}
	s.bits &^= 1 << d.Bit()
	return s
}

func (s Schedule) Contains(d Weekday) bool {
	if !d.Valid() {
		return false
	}
	return s.bits&(1<<d.Bit()) != 0
}

func (s Schedule) IsEmpty() bool {
	return s.bits == 0
}

func (s Schedule) Len() int {
	n := 0
	for _, d := range AllWeekdays {
		if s.Contains(d) {
			n++
		}
	}
	return n
}

// Days returns the members Monday first.
func (s Schedule) Days() []Weekday {
	days := make([]Weekday, 0, 7)
	for _, d := range AllWeekdays {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s Schedule) String() string {
	switch s.Len() {
	case 0:
		return ""
	case 7:
		return "Каждый день"
	}
	parts := make([]string, 0, 7)
	for _, d := range s.Days() {
		parts = append(parts, d.Short())
	}
	return strings.Join(parts, ", ")
}

// ParseSchedule reads a comma or space separated weekday list. "daily",
// "каждый день" and "*" select the whole week; an empty string or "-"
// yields the empty (one-off) schedule.
func ParseSchedule(raw string) (Schedule, error) {
	clean := strings.ToLower(strings.TrimSpace(raw))
	switch clean {
	case "", "-", "once", "разово":
		return Schedule{}, nil
	case "*", "daily", "every day", "каждый день", "ежедневно":
		return EveryDay(), nil
	}
	fields := strings.FieldsFunc(clean, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})
	var s Schedule
	for _, f := range fields {
		d, err := ParseWeekday(f)
		if err != nil {
			return Schedule{}, err
		}
		s = s.With(d)
	}
	return s, nil
}

// Value stores the schedule as its mask.
func (s Schedule) Value() (driver.Value, error) {
	return int64(s.Encode()), nil
}

// Scan reads a mask written by Value.
func (s *Schedule) Scan(src any) error {
	var raw int64
	switch v := src.(type) {
	case nil:
		*s = Schedule{}
		return nil
	case int64:
		raw = v
	case int:
		raw = int64(v)
	case []byte:
		if _, err := fmt.Sscan(string(v), &raw); err != nil {
			return fmt.Errorf("scan schedule: %w", err)
		}
	case string:
		if _, err := fmt.Sscan(v, &raw); err != nil {
			return fmt.Errorf("scan schedule: %w", err)
		}
	default:
		return fmt.Errorf("scan schedule: unsupported type %T", src)
	}
	if raw < 0 || raw > 0xff {
		return fmt.Errorf("scan schedule: value %d out of range", raw)
	}
	decoded, err := DecodeSchedule(uint8(raw))
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}
