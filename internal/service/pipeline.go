package service

import (
	"context"
	"fmt"
	"time"

	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
)

// Query is the filter state a projection is computed for.
type Query struct {
	Date   time.Time
	Filter model.FilterType
	Search string
}

// TrackerView is one tracker ready for display.
type TrackerView struct {
	ID              string
	Name            string
	Color           string
	Emoji           string
	Schedule        model.Schedule
	OneOffDay       *string
	CompletedDays   int
	CompletedOnDate bool
}

type CategoryView struct {
	Title    string
	Trackers []TrackerView
}

// Result is the output of one pipeline run. Date is the day the trackers
// were selected for, which for the today filter is the clock's date.
type Result struct {
	Date       time.Time
	Categories []CategoryView
}

// Pipeline turns store contents into a projection: search, then date
// visibility, then the completion filter. Each run reads the store again.
type Pipeline struct {
	trackers *repository.TrackerRepository
	records  *repository.RecordRepository
	clock    Clock
	cal      model.Calendar
}

func NewPipeline(trackers *repository.TrackerRepository, records *repository.RecordRepository, clock Clock, cal model.Calendar) *Pipeline {
	return &Pipeline{trackers: trackers, records: records, clock: clock, cal: cal}
}

func (p *Pipeline) Run(ctx context.Context, q Query) (Result, error) {
	if q.Filter == "" {
		q.Filter = model.FilterAll
	}
	if !q.Filter.Valid() {
		return Result{}, &model.ValidationError{Field: "filter", Reason: fmt.Sprintf("unknown filter %q", q.Filter)}
	}

	grouped, err := p.trackers.FetchGrouped(ctx)
	if err != nil {
		return Result{}, err
	}

	categories := Search(grouped, q.Search)

	date := q.Date
	if q.Filter == model.FilterToday || date.IsZero() {
		date = p.clock.Now()
	}
	date = p.cal.StartOfDay(date)
	categories = model.DueTrackers(categories, date, p.cal)

	keys, err := p.records.FetchCompleted(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	dayKey := p.cal.DayKey(date)
	completedOnDate := make(map[string]bool)
	for _, k := range keys {
		if k.Day == dayKey {
			completedOnDate[k.TrackerID] = true
		}
	}
	isCompleted := func(id string) bool { return completedOnDate[id] }

	switch q.Filter {
	case model.FilterCompleted:
		categories = FilterByCompletion(categories, isCompleted, true)
	case model.FilterNotCompleted:
		categories = FilterByCompletion(categories, isCompleted, false)
	}

	counts, err := p.records.CompletedCounts(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{Date: date, Categories: make([]CategoryView, 0, len(categories))}
	for _, cat := range categories {
		cv := CategoryView{Title: cat.Title, Trackers: make([]TrackerView, 0, len(cat.Trackers))}
		for _, tr := range cat.Trackers {
			cv.Trackers = append(cv.Trackers, TrackerView{
				ID:              tr.ID,
				Name:            tr.Name,
				Color:           tr.Color,
				Emoji:           tr.Emoji,
				Schedule:        tr.Schedule,
				OneOffDay:       tr.OneOffDay,
				CompletedDays:   counts[tr.ID],
				CompletedOnDate: isCompleted(tr.ID),
			})
		}
		result.Categories = append(result.Categories, cv)
	}
	return result, nil
}
