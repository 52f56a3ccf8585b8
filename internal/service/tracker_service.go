package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"habit-tracker/internal/logger"
	"habit-tracker/internal/model"
	"habit-tracker/internal/repository"
)

// TrackerInput represents data required to create or edit a tracker.
type TrackerInput struct {
	Name     string
	Category string
	Color    string
	Emoji    string
	Schedule model.Schedule
	// OneOffDate is the day a tracker with an empty schedule is due. It is
	// ignored for recurring trackers.
	OneOffDate time.Time
}

// TrackerService wraps tracker-related business logic.
type TrackerService struct {
	trackers *repository.TrackerRepository
	cal      model.Calendar
}

func NewTrackerService(trackers *repository.TrackerRepository, cal model.Calendar) *TrackerService {
	return &TrackerService{trackers: trackers, cal: cal}
}

func (s *TrackerService) Create(ctx context.Context, input TrackerInput) (*model.Tracker, error) {
	tracker, category, err := s.build(input)
	if err != nil {
		return nil, err
	}
	tracker.ID = uuid.NewString()

	if err := s.trackers.Create(ctx, &tracker, category); err != nil {
		return nil, err
	}
	logger.Info("tracker created", "id", tracker.ID, "category", category, "schedule", tracker.Schedule.Encode())
	return &tracker, nil
}

// Update replaces every attribute of tracker id, including its category.
func (s *TrackerService) Update(ctx context.Context, id string, input TrackerInput) (*model.Tracker, error) {
	tracker, category, err := s.build(input)
	if err != nil {
		return nil, err
	}
	tracker.ID = id

	if err := s.trackers.Update(ctx, &tracker, category); err != nil {
		return nil, err
	}
	logger.Info("tracker updated", "id", id, "category", category)
	return &tracker, nil
}

// Delete removes the tracker and its completion history.
func (s *TrackerService) Delete(ctx context.Context, id string) error {
	if err := s.trackers.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("tracker deleted", "id", id)
	return nil
}

func (s *TrackerService) Get(ctx context.Context, id string) (*model.Tracker, error) {
	return s.trackers.FindByID(ctx, id)
}

// Input returns the editable attributes of tracker id, category included.
func (s *TrackerService) Input(ctx context.Context, id string) (TrackerInput, error) {
	tracker, err := s.trackers.FindByID(ctx, id)
	if err != nil {
		return TrackerInput{}, err
	}
	title, err := s.trackers.CategoryTitle(ctx, tracker)
	if err != nil {
		return TrackerInput{}, err
	}
	input := TrackerInput{
		Name:     tracker.Name,
		Category: title,
		Color:    tracker.Color,
		Emoji:    tracker.Emoji,
		Schedule: tracker.Schedule,
	}
	if tracker.OneOffDay != nil {
		day, err := s.cal.ParseDay(*tracker.OneOffDay)
		if err != nil {
			return TrackerInput{}, err
		}
		input.OneOffDate = day
	}
	return input, nil
}

func (s *TrackerService) build(input TrackerInput) (model.Tracker, string, error) {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return model.Tracker{}, "", &model.ValidationError{Field: "category", Reason: "title must not be empty"}
	}

	tracker := model.Tracker{
		Name:     strings.TrimSpace(input.Name),
		Color:    input.Color,
		Emoji:    input.Emoji,
		Schedule: input.Schedule,
	}
	if input.Schedule.IsEmpty() && !input.OneOffDate.IsZero() {
		day := s.cal.DayKey(input.OneOffDate)
		tracker.OneOffDay = &day
	}
	if err := tracker.Validate(); err != nil {
		return model.Tracker{}, "", err
	}
	return tracker, category, nil
}

func (s *TrackerService) Count(ctx context.Context) (int, error) {
	return s.trackers.Count(ctx)
}

// List returns every tracker grouped by category, ignoring schedules.
func (s *TrackerService) List(ctx context.Context) ([]model.Category, error) {
	return s.trackers.FetchGrouped(ctx)
}

// Resolve finds a tracker by id, unique id prefix or case-insensitive name.
func (s *TrackerService) Resolve(ctx context.Context, ref string) (*model.Tracker, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &model.ValidationError{Field: "tracker", Reason: "reference must not be empty"}
	}
	if tracker, err := s.trackers.FindByID(ctx, ref); err == nil {
		return tracker, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	categories, err := s.trackers.FetchGrouped(ctx)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(ref)
	var matches []model.Tracker
	for _, cat := range categories {
		for _, tr := range cat.Trackers {
			if strings.ToLower(tr.Name) == lower || (len(ref) >= 4 && strings.HasPrefix(tr.ID, ref)) {
				matches = append(matches, tr)
			}
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("tracker %q: %w", ref, model.ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		return nil, &model.ValidationError{Field: "tracker", Reason: fmt.Sprintf("%q matches %d trackers", ref, len(matches))}
	}
}
