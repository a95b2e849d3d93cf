// Package registry is the boundary to the external participant registry.
//
// Custodia never resolves identities itself; it only consumes the category
// the registry assigns to a participant. The Static implementation stands in
// for the real registry in development and tests, and RedisCache adds a
// shared read-through cache in front of whichever implementation is wired.
package registry

import (
	"context"
	"sync"

	id "custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// Registry maps a participant identifier to its category.
type Registry interface {
	// CategoryOf returns the participant's category. Participants unknown to
	// the registry fail with CodeUnknownCategory; the core never guesses.
	CategoryOf(ctx context.Context, party id.PartyID) (id.Category, error)
}

// Static is an in-memory registry seeded with a fixed participant set.
type Static struct {
	mu      sync.RWMutex
	parties map[id.PartyID]id.Category
}

// NewStatic builds a registry from the given participant set. The seed map is
// copied; later changes to it do not leak in.
func NewStatic(parties map[id.PartyID]id.Category) *Static {
	seeded := make(map[id.PartyID]id.Category, len(parties))
	for p, c := range parties {
		seeded[p] = c
	}
	return &Static{parties: seeded}
}

// Register adds or replaces a participant. Used by fixtures and seeding.
func (s *Static) Register(party id.PartyID, category id.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties[party] = category
}

func (s *Static) CategoryOf(_ context.Context, party id.PartyID) (id.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.parties[party]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeUnknownCategory, "participant %s is not registered", party)
	}
	return category, nil
}
