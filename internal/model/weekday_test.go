package model

import (
	"testing"
	"time"
)

func TestWeekdayBitsAreInjective(t *testing.T) {
	seen := make(map[uint8]Weekday)
	for _, d := range AllWeekdays {
		bit := d.Bit()
		if bit > 6 {
			t.Fatalf("%s has bit %d outside 0..6", d, bit)
		}
		if other, ok := seen[bit]; ok {
			t.Fatalf("%s and %s share bit %d", d, other, bit)
		}
		seen[bit] = d
	}
	if len(seen) != 7 {
		t.Fatalf("expected 7 distinct bits, got %d", len(seen))
	}
	if Monday.Bit() != 0 || Sunday.Bit() != 6 {
		t.Fatalf("bit order must start at Monday=0 and end at Sunday=6")
	}
}

func TestWeekdayFromCalendar(t *testing.T) {
	tests := []struct {
		index int
		want  Weekday
		ok    bool
	}{
		{1, Sunday, true},
		{2, Monday, true},
		{4, Wednesday, true},
		{7, Saturday, true},
		{0, 0, false},
		{8, 0, false},
	}
	for _, tt := range tests {
		got, ok := WeekdayFromCalendar(tt.index)
		if ok != tt.ok || got != tt.want {
			t.Errorf("WeekdayFromCalendar(%d) = %v, %v; want %v, %v", tt.index, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2024-03-04 is a Monday.
	start := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	for i, want := range AllWeekdays {
		if got := WeekdayOf(start.AddDate(0, 0, i)); got != want {
			t.Errorf("day %d: got %s, want %s", i, got, want)
		}
	}
}

func TestWeekdayLabels(t *testing.T) {
	if Wednesday.String() != "Среда" || Wednesday.Short() != "Ср" {
		t.Errorf("unexpected labels %q %q", Wednesday.String(), Wednesday.Short())
	}
	if Weekday(42).Valid() {
		t.Error("Weekday(42) should be invalid")
	}
}

func TestParseWeekday(t *testing.T) {
	for input, want := range map[string]Weekday{
		"пн":      Monday,
		"Среда":   Wednesday,
		" fri ":   Friday,
		"SUNDAY":  Sunday,
		"суббота": Saturday,
	} {
		got, err := ParseWeekday(input)
		if err != nil {
			t.Errorf("ParseWeekday(%q): %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseWeekday(%q) = %s, want %s", input, got, want)
		}
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Error("expected error for unknown weekday")
	}
}
