package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"habit-tracker/internal/logger"
	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
)

// EmptyState tells a front end which placeholder to show when a view has
// no trackers.
type EmptyState string

const (
	EmptyNone         EmptyState = ""
	EmptyNoTrackers   EmptyState = "no-trackers"
	EmptyNothingFound EmptyState = "nothing-found"
)

func (e EmptyState) Message() string {
	switch e {
	case EmptyNoTrackers:
		return "Что будем отслеживать?"
	case EmptyNothingFound:
		return "Ничего не найдено"
	default:
		return ""
	}
}

// View is what a screen displays for the current session state.
type View struct {
	Date       time.Time
	Filter     model.FilterType
	Search     string
	Categories []CategoryView
	Empty      EmptyState
}

// Trackers flattens the view in display order.
func (v View) Trackers() []TrackerView {
	var out []TrackerView
	for _, c := range v.Categories {
		out = append(out, c.Trackers...)
	}
	return out
}

// Find looks a tracker up by id.
func (v View) Find(id string) (TrackerView, bool) {
	for _, c := range v.Categories {
		for _, t := range c.Trackers {
			if t.ID == id {
				return t, true
			}
		}
	}
	return TrackerView{}, false
}

// Session holds the selected date, filter and search of one screen and
// turns user actions into engine calls. The projection is recomputed from
// the store whenever the state or the store changes.
type Session struct {
	pipeline   *Pipeline
	trackers   *TrackerService
	completion *CompletionService
	clock      Clock
	cal        model.Calendar

	mu     sync.Mutex
	date   time.Time
	filter model.FilterType
	search string
	cached *View

	// dirty and searchStale are written by store change handlers, which
	// may run while mu is held by the goroutine performing the write.
	dirty       atomic.Bool
	searchStale atomic.Bool
	unsubscribe func()
}

func NewSession(pipeline *Pipeline, trackers *TrackerService, completion *CompletionService, events *repository.Events, clock Clock, cal model.Calendar) *Session {
	s := &Session{
		pipeline:   pipeline,
		trackers:   trackers,
		completion: completion,
		clock:      clock,
		cal:        cal,
		date:       cal.StartOfDay(clock.Now()),
		filter:     model.FilterAll,
	}
	s.dirty.Store(true)
	if events != nil {
		s.unsubscribe = events.Subscribe(func(c repository.Change) {
			if c.Entity != repository.EntityRecord {
				s.searchStale.Store(true)
			}
			s.dirty.Store(true)
		})
	}
	return s
}

// Close stops listening for store changes.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// State returns the selected date, filter and search query.
func (s *Session) State() (time.Time, model.FilterType, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle()
	return s.date, s.filter, s.search
}

// settle applies what changed outside user actions. A tracker or category
// change in the store drops the search, and the today filter keeps the
// selected date on the clock's day. Callers hold mu.
func (s *Session) settle() {
	if s.searchStale.Swap(false) && s.search != "" {
		s.search = ""
		s.dirty.Store(true)
	}
	if s.filter == model.FilterToday {
		now := s.clock.Now()
		if !s.cal.SameDay(s.date, now) {
			logger.Debug("day changed under today filter", "day", s.cal.DayKey(now))
			s.date = s.cal.StartOfDay(now)
			s.search = ""
			s.dirty.Store(true)
		}
	}
}

// SetSelectedDate moves the session to date and clears the search. With the
// today filter active a date other than today switches the filter back to
// all; the return value reports that. Coming back to today does not restore
// the today filter.
func (s *Session) SetSelectedDate(date time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.cal.StartOfDay(date)
	reset := false
	if s.filter == model.FilterToday && !s.cal.SameDay(day, s.clock.Now()) {
		s.filter = model.FilterAll
		reset = true
		logger.Debug("date changed manually, filter reset", "filter", model.FilterAll)
	}
	s.date = day
	s.search = ""
	s.dirty.Store(true)
	return reset
}

// SetFilter changes the filter and clears the search. The today filter also
// moves the selected date to today.
func (s *Session) SetFilter(f model.FilterType) error {
	if !f.Valid() {
		return &model.ValidationError{Field: "filter", Reason: fmt.Sprintf("unknown filter %q", f)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if f == model.FilterToday {
		s.date = s.cal.StartOfDay(s.clock.Now())
	}
	s.filter = f
	s.search = ""
	s.dirty.Store(true)
	return nil
}

func (s *Session) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchStale.Store(false)
	s.search = strings.TrimSpace(q)
	s.dirty.Store(true)
}

// RollOver is called when the calendar day changes. A session showing today
// follows the clock to the new day and drops its search.
func (s *Session) RollOver(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter == model.FilterToday && !s.cal.SameDay(s.date, now) {
		s.date = s.cal.StartOfDay(now)
		s.search = ""
	}
	s.dirty.Store(true)
}

// View returns the projection for the current state. When the store fails
// the last good view is returned together with the error.
func (s *Session) View(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settle()
	if s.cached != nil && !s.dirty.Load() {
		return *s.cached, nil
	}

	s.dirty.Store(false)
	res, err := s.pipeline.Run(ctx, Query{Date: s.date, Filter: s.filter, Search: s.search})
	if err != nil {
		s.dirty.Store(true)
		logger.Error("reload trackers", "err", err)
		if s.cached != nil {
			return *s.cached, err
		}
		return View{Date: s.date, Filter: s.filter, Search: s.search}, err
	}

	v := View{
		Date:       res.Date,
		Filter:     s.filter,
		Search:     s.search,
		Categories: res.Categories,
	}
	if len(v.Categories) == 0 {
		v.Empty = emptyStateFor(s.filter, s.search)
	}
	s.cached = &v
	return v, nil
}

func emptyStateFor(filter model.FilterType, search string) EmptyState {
	if search != "" {
		return EmptyNothingFound
	}
	if filter == model.FilterCompleted || filter == model.FilterNotCompleted {
		return EmptyNothingFound
	}
	return EmptyNoTrackers
}

// ToggleCompletion flips trackerID on the selected date. When the tracker
// no longer exists the session resyncs from the store.
func (s *Session) ToggleCompletion(ctx context.Context, trackerID string) (bool, error) {
	s.mu.Lock()
	s.settle()
	date := s.date
	s.mu.Unlock()

	done, err := s.completion.Toggle(ctx, trackerID, date)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("tracker gone, resyncing", "id", trackerID)
			s.dirty.Store(true)
		}
		return false, err
	}
	return done, nil
}

// CreateTracker stores a new tracker. A one-off tracker without a date is
// placed on the selected date. The search is cleared on success.
func (s *Session) CreateTracker(ctx context.Context, input TrackerInput) (*model.Tracker, error) {
	tracker, err := s.trackers.Create(ctx, s.withOneOffDate(input))
	if err != nil {
		return nil, err
	}
	s.clearSearch()
	return tracker, nil
}

// UpdateTracker rewrites tracker id the same way CreateTracker stores one.
func (s *Session) UpdateTracker(ctx context.Context, id string, input TrackerInput) (*model.Tracker, error) {
	tracker, err := s.trackers.Update(ctx, id, s.withOneOffDate(input))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.dirty.Store(true)
		}
		return nil, err
	}
	s.clearSearch()
	return tracker, nil
}

func (s *Session) withOneOffDate(input TrackerInput) TrackerInput {
	if input.Schedule.IsEmpty() && input.OneOffDate.IsZero() {
		s.mu.Lock()
		s.settle()
		input.OneOffDate = s.date
		s.mu.Unlock()
	}
	return input
}

func (s *Session) clearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = ""
	s.dirty.Store(true)
}

func (s *Session) DeleteTracker(ctx context.Context, id string) error {
	err := s.trackers.Delete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		s.dirty.Store(true)
	}
	return err
}

// Statistics returns the global completion statistic together with the
// number of trackers.
func (s *Session) Statistics(ctx context.Context) (Stats, error) {
	stats, err := s.completion.Statistics(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.Trackers, err = s.trackers.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}
