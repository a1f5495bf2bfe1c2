package memory

import (
	"context"
	"sort"
	"sync"

	"nft-minter/internal/domain"
	"nft-minter/internal/storage"
)

// AttemptStore is an in-memory implementation of storage.AttemptStore.
type AttemptStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Attempt // keyed by attempt ID
}

// NewAttemptStore creates a new in-memory attempt store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		data: make(map[string]*domain.Attempt),
	}
}

// Insert adds a finished attempt. Returns ErrDuplicateKey if its ID
// exists and ErrInvalidInput if the attempt is not terminal.
func (s *AttemptStore) Insert(_ context.Context, a *domain.Attempt) error {
	if a == nil || a.ID == "" || a.Account == "" {
		return storage.ErrInvalidInput
	}
	if !a.State.Terminal() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	snap := a.Snapshot()
	s.data[a.ID] = &snap
	return nil
}

// GetByID retrieves an attempt by its ID. Returns ErrNotFound if not exists.
func (s *AttemptStore) GetByID(_ context.Context, id string) (*domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	snap := a.Snapshot()
	return &snap, nil
}

// GetByAccount retrieves all attempts for an account, newest first.
func (s *AttemptStore) GetByAccount(_ context.Context, account string) ([]*domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Attempt
	for _, a := range s.data {
		if a.Account == account {
			snap := a.Snapshot()
			result = append(result, &snap)
		}
	}

	sortNewestFirst(result)
	return result, nil
}

// List retrieves the most recent attempts across all accounts, newest
// first, capped at limit.
func (s *AttemptStore) List(_ context.Context, limit int) ([]*domain.Attempt, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Attempt, 0, len(s.data))
	for _, a := range s.data {
		snap := a.Snapshot()
		result = append(result, &snap)
	}

	sortNewestFirst(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// sortNewestFirst orders by started_at DESC, with ID as a tiebreaker
// for a stable order.
func sortNewestFirst(attempts []*domain.Attempt) {
	sort.Slice(attempts, func(i, j int) bool {
		if !attempts[i].StartedAt.Equal(attempts[j].StartedAt) {
			return attempts[i].StartedAt.After(attempts[j].StartedAt)
		}
		return attempts[i].ID < attempts[j].ID
	})
}

// Verify interface compliance at compile time.
var _ storage.AttemptStore = (*AttemptStore)(nil)
