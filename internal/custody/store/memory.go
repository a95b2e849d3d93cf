// Package store persists custody records. Implementations are pure I/O:
// custody rules live in the aggregate and service layers.
//
// Mutations go through Execute, which serializes writers per record. This is
// the explicit mutual exclusion the domain model relies on when hosted in a
// concurrent process instead of a serialized ledger.
package store

import (
	"context"
	"sync"

	"custodia/internal/custody/models"
	id "custodia/pkg/domain"
	"custodia/pkg/platform/sentinel"
)

// InMemory keeps custody records in a mutex-guarded map. Reads hand out deep
// clones so callers can never mutate committed state.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.ItemID]*models.CustodyRecord
}

// NewInMemory creates an empty in-memory record store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.ItemID]*models.CustodyRecord)}
}

// Create persists a newly constructed record.
// Returns sentinel.ErrConflict when a record for the item already exists.
func (s *InMemory) Create(_ context.Context, record *models.CustodyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ItemID()]; exists {
		return sentinel.ErrConflict
	}
	s.records[record.ItemID()] = record.Clone()
	return nil
}

// Find returns a clone of the record for the item.
// Returns sentinel.ErrNotFound when no record exists.
func (s *InMemory) Find(_ context.Context, itemID id.ItemID) (*models.CustodyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return record.Clone(), nil
}

// Execute runs fn against the record under the store's write lock and commits
// the result only when fn succeeds. fn receives a clone, so a failing
// mutation leaves the committed record untouched (all-or-nothing append).
func (s *InMemory) Execute(
	_ context.Context,
	itemID id.ItemID,
	fn func(record *models.CustodyRecord) error,
) (*models.CustodyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	committed, ok := s.records[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := committed.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.records[itemID] = working
	return working.Clone(), nil
}
