package state

import (
	"sync"
	"time"

	"github.com/five82/patrol/internal/violations"
)

// Snapshot is a consistent copy of the store for renderers.
type Snapshot struct {
	Records     []violations.Violation
	LastUpdated time.Time
	HasData     bool // false until the first successful Replace
}

// Store holds the last successfully fetched page of violations. The poller is
// its only writer; everything else reads copies.
type Store struct {
	mu         sync.RWMutex
	records    []violations.Violation
	lastUpdate time.Time
	hasData    bool
	closed     bool
	now        func() time.Time
}

// Replace swaps the held records wholesale and stamps the update time. Nothing
// from the previous snapshot survives. It reports false, and changes nothing,
// once the store has been closed.
func (s *Store) Replace(records []violations.Violation) bool {
	dup := violations.CloneAll(records)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.records = dup
	s.lastUpdate = s.clock()
	s.hasData = true
	return true
}

// Current returns a copy of the held records in received order.
func (s *Store) Current() []violations.Violation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return violations.CloneAll(s.records)
}

// LastUpdate returns the time of the last successful Replace.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// Snapshot returns records and update time captured under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Records:     violations.CloneAll(s.records),
		LastUpdated: s.lastUpdate,
		HasData:     s.hasData,
	}
}

// Close tears the store down. Fetches that complete afterwards are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
