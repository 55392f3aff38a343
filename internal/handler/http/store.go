package http

import (
	"sync"
	"time"

	"library-events/internal/domain/entity"
)

// EventStore holds the in-memory event set served by the API. Readers
// get the current slice without copying; writers swap it wholesale
// after an aggregation run, so slices handed out stay valid.
type EventStore struct {
	mu        sync.RWMutex
	records   []*entity.EventRecord
	updatedAt time.Time
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

// Replace swaps the full event set.
func (s *EventStore) Replace(records []*entity.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.updatedAt = time.Now()
}

// Records returns the current event set. Callers must not mutate it.
func (s *EventStore) Records() []*entity.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// UpdatedAt reports when the set was last replaced. Zero before the
// first load.
func (s *EventStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
