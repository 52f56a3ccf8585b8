package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"habit-tracker/internal/model"
)

// TrackerRepository handles CRUD for trackers.
type TrackerRepository struct {
	db     *gorm.DB
	events *Events
	cal    model.Calendar
}

func NewTrackerRepository(db *gorm.DB, events *Events, cal model.Calendar) *TrackerRepository {
	return &TrackerRepository{db: db, events: events, cal: cal}
}

// Create stores a new tracker under categoryTitle, creating the category if
// needed. Nothing is written when validation fails.
func (r *TrackerRepository) Create(ctx context.Context, tracker *model.Tracker, categoryTitle string) error {
	if err := tracker.Validate(); err != nil {
		return err
	}
	if tracker.ID == "" {
		return &model.ValidationError{Field: "id", Reason: "must not be empty"}
	}

	var newCategory string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, created, err := findOrCreateCategory(tx, categoryTitle)
		if err != nil {
			return err
		}
		if created {
			newCategory = category.Title
		}
		var last int64
		if err := tx.Model(&model.Tracker{}).Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("next position: %w", err)
		}
		tracker.CategoryID = category.ID
		tracker.Position = last + 1
		if err := tx.Create(tracker).Error; err != nil {
			return fmt.Errorf("insert tracker: %w", err)
		}
		return nil
	})
	if err != nil {
		return persistErr("create tracker", err)
	}

	if newCategory != "" {
		r.events.publish(Change{Kind: ChangeAdded, Entity: EntityCategory, Category: newCategory})
	}
	r.events.publish(Change{Kind: ChangeAdded, Entity: EntityTracker, TrackerID: tracker.ID})
	return nil
}

// Update rewrites every attribute of an existing tracker and re-links it to
// categoryTitle. Identity, position and creation time are kept.
func (r *TrackerRepository) Update(ctx context.Context, tracker *model.Tracker, categoryTitle string) error {
	if err := tracker.Validate(); err != nil {
		return err
	}

	var newCategory string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Tracker
		if err := tx.Where("id = ?", tracker.ID).First(&existing).Error; err != nil {
			return err
		}
		category, created, err := findOrCreateCategory(tx, categoryTitle)
		if err != nil {
			return err
		}
		if created {
			newCategory = category.Title
		}
		tracker.CategoryID = category.ID
		tracker.Position = existing.Position
		tracker.CreatedAt = existing.CreatedAt
		if err := tx.Save(tracker).Error; err != nil {
			return fmt.Errorf("save tracker: %w", err)
		}
		return nil
	})
	if err != nil {
		return persistErr("update tracker", err)
	}

	if newCategory != "" {
		r.events.publish(Change{Kind: ChangeAdded, Entity: EntityCategory, Category: newCategory})
	}
	r.events.publish(Change{Kind: ChangeUpdated, Entity: EntityTracker, TrackerID: tracker.ID})
	return nil
}

// Delete removes a tracker together with all of its completion records.
func (r *TrackerRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tracker_id = ?", id).Delete(&model.Record{}).Error; err != nil {
			return fmt.Errorf("delete records: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.Tracker{})
		if res.Error != nil {
			return fmt.Errorf("delete tracker: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return persistErr("delete tracker", err)
	}

	r.events.publish(Change{Kind: ChangeDeleted, Entity: EntityTracker, TrackerID: id})
	return nil
}

func (r *TrackerRepository) FindByID(ctx context.Context, id string) (*model.Tracker, error) {
	var tracker model.Tracker
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tracker).Error; err != nil {
		return nil, persistErr("find tracker", err)
	}
	return &tracker, nil
}

// CategoryTitle returns the title of the category the tracker belongs to.
func (r *TrackerRepository) CategoryTitle(ctx context.Context, tracker *model.Tracker) (string, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, tracker.CategoryID).Error; err != nil {
		return "", persistErr("find tracker category", err)
	}
	return category.Title, nil
}

// FetchGrouped returns every category with its trackers. Categories come in
// creation order, trackers in insertion order.
func (r *TrackerRepository) FetchGrouped(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Preload("Trackers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, persistErr("fetch trackers", err)
	}
	return categories, nil
}

// FetchAll returns the trackers due on dueOn grouped by category, dropping
// categories with nothing due.
func (r *TrackerRepository) FetchAll(ctx context.Context, dueOn time.Time) ([]model.Category, error) {
	categories, err := r.FetchGrouped(ctx)
	if err != nil {
		return nil, err
	}
	return model.DueTrackers(categories, dueOn, r.cal), nil
}

// Count returns the number of stored trackers.
func (r *TrackerRepository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Tracker{}).Count(&n).Error; err != nil {
		return 0, persistErr("count trackers", err)
	}
	return int(n), nil
}
