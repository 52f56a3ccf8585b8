package model

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day of the week as the tracker schedule sees it.
// The numeric value is not the storage format; use Bit for that.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// AllWeekdays lists the week Monday first.
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

type weekdayInfo struct {
	label string
	short string
	bit   uint8
}

// Bit positions are part of the storage format: Monday=0 ... Sunday=6.
var weekdayTable = map[Weekday]weekdayInfo{
	Monday:    {label: "Понедельник", short: "Пн", bit: 0},
	Tuesday:   {label: "Вторник", short: "Вт", bit: 1},
	Wednesday: {label: "Среда", short: "Ср", bit: 2},
	Thursday:  {label: "Четверг", short: "Чт", bit: 3},
	Friday:    {label: "Пятница", short: "Пт", bit: 4},
	Saturday:  {label: "Суббота", short: "Сб", bit: 5},
	Sunday:    {label: "Воскресенье", short: "Вс", bit: 6},
}

// calendarTable maps platform day-of-week numbering (Sunday=1 ... Saturday=7).
var calendarTable = map[int]Weekday{
	1: Sunday,
	2: Monday,
	3: Tuesday,
	4: Wednesday,
	5: Thursday,
	6: Friday,
	7: Saturday,
}

// WeekdayFromCalendar converts a Sunday=1...Saturday=7 index.
func WeekdayFromCalendar(index int) (Weekday, bool) {
	d, ok := calendarTable[index]
	return d, ok
}

// WeekdayOf returns the weekday of t in t's own location.
func WeekdayOf(t time.Time) Weekday {
	d, _ := WeekdayFromCalendar(int(t.Weekday()) + 1)
	return d
}

func weekdayFromBit(bit uint8) (Weekday, bool) {
	for d, info := range weekdayTable {
		if info.bit == bit {
			return d, true
		}
	}
	return 0, false
}

func (d Weekday) Valid() bool {
	_, ok := weekdayTable[d]
	return ok
}

func (d Weekday) String() string {
	if info, ok := weekdayTable[d]; ok {
		return info.label
	}
	return fmt.Sprintf("Weekday(%d)", int(d))
}

// Short returns the two-letter label.
func (d Weekday) Short() string {
	return weekdayTable[d].short
}

// Bit returns the bit position used by the persisted schedule mask.
func (d Weekday) Bit() uint8 {
	return weekdayTable[d].bit
}

var weekdayAliases = map[string]Weekday{
	"пн": Monday, "понедельник": Monday, "mon": Monday, "monday": Monday,
	"вт": Tuesday, "вторник": Tuesday, "tue": Tuesday, "tuesday": Tuesday,
	"ср": Wednesday, "среда": Wednesday, "wed": Wednesday, "wednesday": Wednesday,
	"чт": Thursday, "четверг": Thursday, "thu": Thursday, "thursday": Thursday,
	"пт": Friday, "пятница": Friday, "fri": Friday, "friday": Friday,
	"сб": Saturday, "суббота": Saturday, "sat": Saturday, "saturday": Saturday,
	"вс": Sunday, "воскресенье": Sunday, "sun": Sunday, "sunday": Sunday,
}

// ParseWeekday accepts Russian or English full and short names.
func ParseWeekday(s string) (Weekday, error) {
	if d, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown weekday: %s", s)
}
