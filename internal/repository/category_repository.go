package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"habit-tracker/internal/model"
)

// CategoryRepository manages tracker categories.
type CategoryRepository struct {
	db     *gorm.DB
	events *Events
}

func NewCategoryRepository(db *gorm.DB, events *Events) *CategoryRepository {
	return &CategoryRepository{db: db, events: events}
}

// FindOrCreate returns the category with the given title, creating it when
// it does not exist yet. The unique index on title decides concurrent
// creations; the loser re-reads the winner's row.
func (r *CategoryRepository) FindOrCreate(ctx context.Context, title string) (*model.Category, error) {
	var (
		category *model.Category
		created  bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		category, created, err = findOrCreateCategory(tx, title)
		return err
	})
	if err != nil {
		return nil, persistErr("find or create category", err)
	}
	if created {
		r.events.publish(Change{Kind: ChangeAdded, Entity: EntityCategory, Category: category.Title})
	}
	return category, nil
}

// List returns categories in creation order, without trackers.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, persistErr("list categories", err)
	}
	return categories, nil
}

// findOrCreateCategory reports created only when this call inserted the row.
func findOrCreateCategory(db *gorm.DB, title string) (*model.Category, bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, false, &model.ValidationError{Field: "category", Reason: "title must not be empty"}
	}

	var category model.Category
	err := db.Where("title = ?", title).First(&category).Error
	switch {
	case err == nil:
		return &category, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		insert := model.Category{Title: title}
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "title"}},
			DoNothing: true,
		}).Create(&insert)
		if res.Error != nil {
			return nil, false, fmt.Errorf("create category: %w", res.Error)
		}
		if err := db.Where("title = ?", title).First(&category).Error; err != nil {
			return nil, false, fmt.Errorf("reload category: %w", err)
		}
		return &category, res.RowsAffected > 0, nil
	default:
		return nil, false, fmt.Errorf("find category: %w", err)
	}
}
