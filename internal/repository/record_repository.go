package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"habit-tracker/internal/model"
)

// RecordRepository stores completion records, one per tracker and day.
type RecordRepository struct {
	db     *gorm.DB
	events *Events
	cal    model.Calendar
}

func NewRecordRepository(db *gorm.DB, events *Events, cal model.Calendar) *RecordRepository {
	return &RecordRepository{db: db, events: events, cal: cal}
}

// Add marks trackerID completed on day. Adding the same day twice keeps a
// single record.
func (r *RecordRepository) Add(ctx context.Context, trackerID string, day time.Time) error {
	key := r.cal.DayKey(day)
	var inserted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Tracker{}).Where("id = ?", trackerID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tracker_id"}, {Name: "day"}},
			DoNothing: true,
		}).Create(&model.Record{TrackerID: trackerID, Day: key})
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return persistErr("add record", err)
	}
	if inserted {
		r.events.publish(Change{Kind: ChangeAdded, Entity: EntityRecord, TrackerID: trackerID, Day: key})
	}
	return nil
}

// Remove deletes the record for trackerID on day. A missing record is not
// an error.
func (r *RecordRepository) Remove(ctx context.Context, trackerID string, day time.Time) error {
	key := r.cal.DayKey(day)
	var res *gorm.DB
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res = tx.Where("tracker_id = ? AND day = ?", trackerID, key).Delete(&model.Record{})
		return res.Error
	})
	if err != nil {
		return persistErr("remove record", err)
	}
	if res.RowsAffected > 0 {
		r.events.publish(Change{Kind: ChangeDeleted, Entity: EntityRecord, TrackerID: trackerID, Day: key})
	}
	return nil
}

// FetchCompleted lists record identities, for one tracker when trackerID is
// set or for all of them otherwise.
func (r *RecordRepository) FetchCompleted(ctx context.Context, trackerID *string) ([]model.RecordKey, error) {
	q := r.db.WithContext(ctx).Model(&model.Record{})
	if trackerID != nil {
		q = q.Where("tracker_id = ?", *trackerID)
	}
	var keys []model.RecordKey
	if err := q.Select("tracker_id, day").Order("tracker_id ASC, day ASC").Scan(&keys).Error; err != nil {
		return nil, persistErr("fetch records", err)
	}
	return keys, nil
}

// CompletedCount is the number of distinct days trackerID was completed on.
func (r *RecordRepository) CompletedCount(ctx context.Context, trackerID string) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Record{}).Where("tracker_id = ?", trackerID).Count(&n).Error; err != nil {
		return 0, persistErr("count records", err)
	}
	return int(n), nil
}

// CompletedCounts returns CompletedCount for every tracker that has records.
func (r *RecordRepository) CompletedCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		TrackerID string
		N         int
	}
	err := r.db.WithContext(ctx).Model(&model.Record{}).
		Select("tracker_id, COUNT(*) AS n").
		Group("tracker_id").
		Scan(&rows).Error
	if err != nil {
		return nil, persistErr("count records", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.TrackerID] = row.N
	}
	return counts, nil
}

func (r *RecordRepository) IsCompleted(ctx context.Context, trackerID string, day time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Record{}).
		Where("tracker_id = ? AND day = ?", trackerID, r.cal.DayKey(day)).
		Count(&n).Error
	if err != nil {
		return false, persistErr("check record", err)
	}
	return n > 0, nil
}

// TotalCount is the size of the records relation.
func (r *RecordRepository) TotalCount(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Record{}).Count(&n).Error; err != nil {
		return 0, persistErr("count records", err)
	}
	return int(n), nil
}
