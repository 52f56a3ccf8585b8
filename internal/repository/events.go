package repository

import "sync"

// ChangeKind says what happened to an entity.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Entity names the relation a change touched.
type Entity string

const (
	EntityCategory Entity = "category"
	EntityTracker  Entity = "tracker"
	EntityRecord   Entity = "record"
)

// Change carries enough identity for a subscriber to resync.
type Change struct {
	Kind      ChangeKind
	Entity    Entity
	TrackerID string
	// Category is the title of an added category.
	Category string
	// Day is set for record changes.
	Day string
}

// Events fans committed store changes out to subscribers. Handlers run
// synchronously on the writing goroutine after commit and must not write
// to the store.
type Events struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(Change)
}

func NewEvents() *Events {
	return &Events{handlers: make(map[int]func(Change))}
}

// Subscribe registers fn and returns a function that removes it.
func (e *Events) Subscribe(fn func(Change)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.handlers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.handlers, id)
	}
}

func (e *Events) publish(c Change) {
	if e == nil {
		return
	}
	e.mu.RLock()
	handlers := make([]func(Change), 0, len(e.handlers))
	for _, fn := range e.handlers {
		handlers = append(handlers, fn)
	}
	e.mu.RUnlock()
	for _, fn := range handlers {
		fn(c)
	}
}
