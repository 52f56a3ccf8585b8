package model

import (
	"errors"
	"testing"
	"time"
)

func day(t *testing.T, cal Calendar, s string) time.Time {
	t.Helper()
	d, err := cal.ParseDay(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func strptr(s string) *string { return &s }

func TestDueOnRecurringIgnoresTimeOfDay(t *testing.T) {
	cal := Calendar{Loc: time.UTC}
	monday := day(t, cal, "2024-03-04")

	for mask := 1; mask < 128; mask++ {
		s, _ := DecodeSchedule(uint8(mask))
		tr := Tracker{Schedule: s}
		for i := 0; i < 14; i++ {
			d := monday.AddDate(0, 0, i)
			want := s.Contains(WeekdayOf(d))
			for _, offset := range []time.Duration{0, time.Minute, 12 * time.Hour, 23*time.Hour + 59*time.Minute} {
				if got := tr.DueOn(cal, d.Add(offset)); got != want {
					t.Fatalf("mask %07b day %s +%s: got %v want %v", mask, d.Format(DayLayout), offset, got, want)
				}
			}
		}
	}
}

func TestDueOnOneOff(t *testing.T) {
	cal := Calendar{Loc: time.UTC}
	tr := Tracker{OneOffDay: strptr("2024-03-05")}

	if !tr.DueOn(cal, day(t, cal, "2024-03-05").Add(23*time.Hour)) {
		t.Error("one-off must be due on its day")
	}
	for _, other := range []string{"2024-03-04", "2024-03-06", "2024-03-12", "2025-03-05"} {
		if tr.DueOn(cal, day(t, cal, other)) {
			t.Errorf("one-off must not be due on %s", other)
		}
	}
	if (Tracker{}).DueOn(cal, day(t, cal, "2024-03-05")) {
		t.Error("one-off without a day is never due")
	}
}

func TestDueOnUsesLocalWeekday(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	cal := Calendar{Loc: loc}
	tr := Tracker{Schedule: NewSchedule(Wednesday)}

	// Tuesday 20:00 UTC is already Wednesday 06:00 in UTC+10.
	instant := time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC)
	if !tr.DueOn(cal, instant) {
		t.Fatal("weekday must be taken in the calendar location")
	}
	if tr.DueOn(Calendar{Loc: time.UTC}, instant) {
		t.Fatal("in UTC the same instant is a Tuesday")
	}
}

func TestDueTrackersScenario(t *testing.T) {
	cal := Calendar{Loc: time.UTC}
	a := Tracker{ID: "a", Name: "A", Schedule: NewSchedule(Monday, Wednesday)}
	b := Tracker{ID: "b", Name: "B", OneOffDay: strptr("2024-03-05")}
	categories := []Category{
		{ID: 1, Title: "Health", Trackers: []Tracker{a, b}},
		{ID: 2, Title: "Empty"},
	}

	wed := DueTrackers(categories, day(t, cal, "2024-03-06"), cal)
	if len(wed) != 1 || wed[0].Title != "Health" || len(wed[0].Trackers) != 1 || wed[0].Trackers[0].ID != "a" {
		t.Fatalf("Wednesday: got %+v", wed)
	}

	tue := DueTrackers(categories, day(t, cal, "2024-03-05"), cal)
	if len(tue) != 1 || len(tue[0].Trackers) != 1 || tue[0].Trackers[0].ID != "b" {
		t.Fatalf("Tuesday: got %+v", tue)
	}

	if len(categories[0].Trackers) != 2 {
		t.Fatal("input must not be modified")
	}

	if got := DueTrackers(categories, day(t, cal, "2024-03-07"), cal); len(got) != 0 {
		t.Fatalf("Thursday: expected nothing, got %+v", got)
	}
}

func TestDueTrackersKeepsOrder(t *testing.T) {
	cal := Calendar{Loc: time.UTC}
	every := EveryDay()
	categories := []Category{
		{Title: "Z", Trackers: []Tracker{{ID: "3", Schedule: every}, {ID: "1", Schedule: every}}},
		{Title: "A", Trackers: []Tracker{{ID: "2", Schedule: every}}},
	}
	got := DueTrackers(categories, day(t, cal, "2024-03-06"), cal)
	if got[0].Title != "Z" || got[1].Title != "A" {
		t.Fatalf("category order changed: %s, %s", got[0].Title, got[1].Title)
	}
	if got[0].Trackers[0].ID != "3" || got[0].Trackers[1].ID != "1" {
		t.Fatal("tracker order changed")
	}
}

func TestTrackerValidate(t *testing.T) {
	valid := Tracker{Name: "Read", Color: Colors[0].Name, Emoji: Emojis[0], Schedule: NewSchedule(Monday)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid tracker: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Tracker)
		field  string
	}{
		{"empty name", func(tr *Tracker) { tr.Name = "   " }, "name"},
		{"bad color", func(tr *Tracker) { tr.Color = "ultraviolet" }, "color"},
		{"bad emoji", func(tr *Tracker) { tr.Emoji = "🦄" }, "emoji"},
		{"one-off without day", func(tr *Tracker) { tr.Schedule = Schedule{} }, "schedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.mutate(&tr)
			err := tr.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}
