package service

import (
	"context"
	"time"

	"habit-tracker/internal/logger"
	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
)

// Stats backs the statistics screen.
type Stats struct {
	TotalCompleted int
	// Trackers is the number of stored trackers. It is filled by Session.
	Trackers int
}

// HasData reports whether there is anything to show instead of the empty
// placeholder.
func (s Stats) HasData() bool {
	return s.TotalCompleted > 0
}

// CompletionService records and counts tracker completions.
type CompletionService struct {
	records *repository.RecordRepository
	clock   Clock
	cal     model.Calendar
}

func NewCompletionService(records *repository.RecordRepository, clock Clock, cal model.Calendar) *CompletionService {
	return &CompletionService{records: records, clock: clock, cal: cal}
}

// Complete marks trackerID done on onDate. Days after today are rejected
// before the store is touched.
func (s *CompletionService) Complete(ctx context.Context, trackerID string, onDate time.Time) error {
	if s.cal.After(onDate, s.clock.Now()) {
		return &model.FutureDateError{Day: s.cal.DayKey(onDate)}
	}
	if err := s.records.Add(ctx, trackerID, onDate); err != nil {
		return err
	}
	logger.Debug("tracker completed", "id", trackerID, "day", s.cal.DayKey(onDate))
	return nil
}

// Uncomplete removes the completion of trackerID on onDate, if any.
func (s *CompletionService) Uncomplete(ctx context.Context, trackerID string, onDate time.Time) error {
	if err := s.records.Remove(ctx, trackerID, onDate); err != nil {
		return err
	}
	logger.Debug("tracker uncompleted", "id", trackerID, "day", s.cal.DayKey(onDate))
	return nil
}

// Toggle flips the completion state and returns the new one.
func (s *CompletionService) Toggle(ctx context.Context, trackerID string, onDate time.Time) (bool, error) {
	done, err := s.records.IsCompleted(ctx, trackerID, onDate)
	if err != nil {
		return false, err
	}
	if done {
		return false, s.Uncomplete(ctx, trackerID, onDate)
	}
	if err := s.Complete(ctx, trackerID, onDate); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CompletionService) IsCompleted(ctx context.Context, trackerID string, onDate time.Time) (bool, error) {
	return s.records.IsCompleted(ctx, trackerID, onDate)
}

// CompletedDaysCount is the all-time number of days trackerID was done.
func (s *CompletionService) CompletedDaysCount(ctx context.Context, trackerID string) (int, error) {
	return s.records.CompletedCount(ctx, trackerID)
}

// TotalCompletedCount counts every completion record of every tracker.
func (s *CompletionService) TotalCompletedCount(ctx context.Context) (int, error) {
	return s.records.TotalCount(ctx)
}

func (s *CompletionService) Statistics(ctx context.Context) (Stats, error) {
	total, err := s.TotalCompletedCount(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalCompleted: total}, nil
}
