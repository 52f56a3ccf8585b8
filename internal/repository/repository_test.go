package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"habit-tracker/internal/model"
)

var utc = model.Calendar{Loc: time.UTC}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db         *gorm.DB
	events     *Events
	categories *CategoryRepository
	trackers   *TrackerRepository
	records    *RecordRepository

	mu      sync.Mutex
	changes []Change
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: newTestDB(t), events: NewEvents()}
	f.categories = NewCategoryRepository(f.db, f.events)
	f.trackers = NewTrackerRepository(f.db, f.events, utc)
	f.records = NewRecordRepository(f.db, f.events, utc)
	f.events.Subscribe(func(c Change) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.changes = append(f.changes, c)
	})
	return f
}

// categoryChanges returns the titles of published category additions.
func (f *fixture) categoryChanges() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.changes {
		if c.Entity == EntityCategory && c.Kind == ChangeAdded {
			out = append(out, c.Category)
		}
	}
	return out
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utc.ParseDay(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func habit(id, name string, days ...model.Weekday) *model.Tracker {
	return &model.Tracker{
		ID:       id,
		Name:     name,
		Color:    model.Colors[0].Name,
		Emoji:    model.Emojis[0],
		Schedule: model.NewSchedule(days...),
	}
}

func oneOff(id, name, day string) *model.Tracker {
	return &model.Tracker{
		ID:        id,
		Name:      name,
		Color:     model.Colors[1].Name,
		Emoji:     model.Emojis[1],
		OneOffDay: &day,
	}
}

func TestCategoryFindOrCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.categories.FindOrCreate(ctx, "Health")
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.categories.FindOrCreate(ctx, "  Health ")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same category, got ids %d and %d", first.ID, second.ID)
	}

	if _, err := f.categories.FindOrCreate(ctx, "Work"); err != nil {
		t.Fatal(err)
	}
	list, err := f.categories.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Title != "Health" || list[1].Title != "Work" {
		t.Fatalf("unexpected categories: %+v", list)
	}

	_, err = f.categories.FindOrCreate(ctx, "   ")
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if got := strings.Join(f.categoryChanges(), ","); got != "Health,Work" {
		t.Fatalf("category additions published: %q, want Health,Work", got)
	}
}

func TestCategoryFindOrCreateConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]uint, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := f.categories.FindOrCreate(ctx, "Shared")
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = c.ID
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Fatalf("worker %d got category %d, want %d", i, ids[i], ids[0])
		}
	}
	list, _ := f.categories.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected one category, got %d", len(list))
	}
	if got := f.categoryChanges(); len(got) != 1 {
		t.Fatalf("expected one category addition, got %v", got)
	}
}

func TestTrackerCreateAndFetchAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.trackers.Create(ctx, habit("a", "A", model.Monday, model.Wednesday), "Health"); err != nil {
		t.Fatal(err)
	}
	if err := f.trackers.Create(ctx, oneOff("b", "B", "2024-03-05"), "Health"); err != nil {
		t.Fatal(err)
	}
	if err := f.trackers.Create(ctx, habit("c", "C", model.Wednesday), "Work"); err != nil {
		t.Fatal(err)
	}

	wed, err := f.trackers.FetchAll(ctx, mustDay(t, "2024-03-06"))
	if err != nil {
		t.Fatal(err)
	}
	if len(wed) != 2 || wed[0].Title != "Health" || wed[1].Title != "Work" {
		t.Fatalf("unexpected Wednesday categories: %+v", wed)
	}
	if len(wed[0].Trackers) != 1 || wed[0].Trackers[0].ID != "a" {
		t.Fatalf("unexpected Health trackers: %+v", wed[0].Trackers)
	}

	tue, err := f.trackers.FetchAll(ctx, mustDay(t, "2024-03-05").Add(18*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(tue) != 1 || len(tue[0].Trackers) != 1 || tue[0].Trackers[0].ID != "b" {
		t.Fatalf("unexpected Tuesday categories: %+v", tue)
	}

	stored, err := f.trackers.FindByID(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Schedule != model.NewSchedule(model.Monday, model.Wednesday) {
		t.Fatalf("schedule did not survive storage: %v", stored.Schedule.Days())
	}

	n, _ := f.trackers.Count(ctx)
	if n != 3 {
		t.Fatalf("Count() = %d, want 3", n)
	}
}

func TestTrackerInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"z", "m", "a"} {
		if err := f.trackers.Create(ctx, habit(id, strings.ToUpper(id), model.AllWeekdays...), "Same"); err != nil {
			t.Fatal(err)
		}
	}
	grouped, err := f.trackers.FetchGrouped(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, tr := range grouped[0].Trackers {
		got = append(got, tr.ID)
	}
	if strings.Join(got, ",") != "z,m,a" {
		t.Fatalf("trackers out of insertion order: %v", got)
	}
}

func TestTrackerCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := habit("x", "", model.Monday)
	if err := f.trackers.Create(ctx, bad, "Health"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := f.trackers.Create(ctx, habit("y", "Y", model.Monday), " "); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error for empty category, got %v", err)
	}

	n, _ := f.trackers.Count(ctx)
	if n != 0 {
		t.Fatalf("nothing should be stored, got %d trackers", n)
	}
	cats, _ := f.categories.List(ctx)
	if len(cats) != 0 {
		t.Fatalf("nothing should be stored, got %d categories", len(cats))
	}
	if len(f.changes) != 0 {
		t.Fatalf("no change should be published, got %v", f.changes)
	}
}

func TestTrackerUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr := habit("a", "Run", model.Monday)
	if err := f.trackers.Create(ctx, tr, "Health"); err != nil {
		t.Fatal(err)
	}
	before, _ := f.trackers.FindByID(ctx, "a")

	updated := habit("a", "Run fast", model.Friday)
	if err := f.trackers.Update(ctx, updated, "Sport"); err != nil {
		t.Fatal(err)
	}

	after, err := f.trackers.FindByID(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if after.Name != "Run fast" || after.Schedule != model.NewSchedule(model.Friday) {
		t.Fatalf("update not applied: %+v", after)
	}
	if after.Position != before.Position {
		t.Fatalf("position changed from %d to %d", before.Position, after.Position)
	}
	title, err := f.trackers.CategoryTitle(ctx, after)
	if err != nil || title != "Sport" {
		t.Fatalf("CategoryTitle = %q, %v", title, err)
	}
	if got := strings.Join(f.categoryChanges(), ","); got != "Health,Sport" {
		t.Fatalf("category additions published: %q, want Health,Sport", got)
	}

	if err := f.trackers.Update(ctx, habit("a", "Run", model.Friday), "Health"); err != nil {
		t.Fatal(err)
	}
	if got := f.categoryChanges(); len(got) != 2 {
		t.Fatalf("moving to an existing category must not publish an addition, got %v", got)
	}

	if err := f.trackers.Update(ctx, habit("missing", "M", model.Monday), "Sport"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTrackerDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.trackers.Create(ctx, habit("a", "A", model.AllWeekdays...), "Health"); err != nil {
		t.Fatal(err)
	}
	if err := f.trackers.Create(ctx, habit("b", "B", model.AllWeekdays...), "Health"); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{"2024-03-04", "2024-03-05"} {
		if err := f.records.Add(ctx, "a", mustDay(t, d)); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.records.Add(ctx, "b", mustDay(t, "2024-03-04")); err != nil {
		t.Fatal(err)
	}

	if err := f.trackers.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.trackers.FindByID(ctx, "a"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	keys, err := f.records.FetchCompleted(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0].TrackerID != "b" {
		t.Fatalf("records of deleted tracker survived: %+v", keys)
	}

	if err := f.trackers.Delete(ctx, "a"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestRecordIdempotence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.trackers.Create(ctx, habit("a", "A", model.AllWeekdays...), "Health"); err != nil {
		t.Fatal(err)
	}
	f.changes = nil

	morning := mustDay(t, "2024-03-06").Add(8 * time.Hour)
	evening := mustDay(t, "2024-03-06").Add(21 * time.Hour)
	if err := f.records.Add(ctx, "a", morning); err != nil {
		t.Fatal(err)
	}
	if err := f.records.Add(ctx, "a", evening); err != nil {
		t.Fatal(err)
	}
	n, err := f.records.CompletedCount(ctx, "a")
	if err != nil || n != 1 {
		t.Fatalf("CompletedCount = %d, %v; want 1", n, err)
	}
	if len(f.changes) != 1 {
		t.Fatalf("expected one change for two adds, got %d", len(f.changes))
	}
	done, _ := f.records.IsCompleted(ctx, "a", evening)
	if !done {
		t.Fatal("IsCompleted should be true")
	}

	if err := f.records.Remove(ctx, "a", morning); err != nil {
		t.Fatal(err)
	}
	if err := f.records.Remove(ctx, "a", morning); err != nil {
		t.Fatalf("removing a missing record must not fail: %v", err)
	}
	done, _ = f.records.IsCompleted(ctx, "a", evening)
	if done {
		t.Fatal("IsCompleted should be false after remove")
	}
	if len(f.changes) != 2 {
		t.Fatalf("expected two changes in total, got %d", len(f.changes))
	}
}

func TestRecordAddUnknownTracker(t *testing.T) {
	f := newFixture(t)
	err := f.records.Add(context.Background(), "ghost", mustDay(t, "2024-03-06"))
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := f.trackers.Create(ctx, habit(id, id, model.AllWeekdays...), "Health"); err != nil {
			t.Fatal(err)
		}
	}
	_ = f.records.Add(ctx, "a", mustDay(t, "2024-03-04"))
	_ = f.records.Add(ctx, "a", mustDay(t, "2024-03-06"))
	_ = f.records.Add(ctx, "b", mustDay(t, "2024-03-06"))

	counts, err := f.records.CompletedCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["a"] != 2 || counts["b"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	total, _ := f.records.TotalCount(ctx)
	if total != 3 {
		t.Fatalf("TotalCount = %d, want 3", total)
	}

	id := "a"
	keys, err := f.records.FetchCompleted(ctx, &id)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0].Day != "2024-03-04" || keys[1].Day != "2024-03-06" {
		t.Fatalf("unexpected keys: %+v", keys)
	}
}

func TestWithForeignKeys(t *testing.T) {
	tests := map[string]string{
		"tracker.db":                "tracker.db?_foreign_keys=on",
		"file:x?mode=memory":        "file:x?mode=memory&_foreign_keys=on",
		"data.db?_foreign_keys=off": "data.db?_foreign_keys=off",
	}
	for in, want := range tests {
		if got := withForeignKeys(in); got != want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEventsUnsubscribe(t *testing.T) {
	e := NewEvents()
	var n int
	cancel := e.Subscribe(func(Change) { n++ })
	e.publish(Change{Kind: ChangeAdded})
	cancel()
	e.publish(Change{Kind: ChangeAdded})
	if n != 1 {
		t.Fatalf("handler called %d times, want 1", n)
	}

	var nilEvents *Events
	nilEvents.publish(Change{})
}
