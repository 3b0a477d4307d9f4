// Package profile provides storage backends for user personalization profiles.
package profile

import (
	"context"
	"sync"

	"github.com/jonathan/introbird/internal/db"
	"github.com/jonathan/introbird/internal/types"
)

// Store reads and writes personalization profiles keyed by user id.
// GetProfile returns types.ErrProfileNotFound when the user has no profile.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*types.Profile, error)
	SaveProfile(ctx context.Context, userID string, update *types.Profile) (*types.Profile, error)
}

// Compile-time checks
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FirestoreStore)(nil)
	_ Store = (*CachedStore)(nil)
	_ Store = (*db.DB)(nil)
)

// MemoryStore keeps profiles in process memory. Used for local development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*types.Profile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*types.Profile)}
}

// GetProfile returns a copy of the stored profile.
func (s *MemoryStore) GetProfile(_ context.Context, userID string) (*types.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	return p.Clone(), nil
}

// SaveProfile merges update into the stored profile.
func (s *MemoryStore) SaveProfile(_ context.Context, userID string, update *types.Profile) (*types.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.profiles[userID].Merge(update.Clone())
	s.profiles[userID] = merged
	return merged.Clone(), nil
}
