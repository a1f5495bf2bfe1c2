package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"nft-minter/internal/domain"
	"nft-minter/internal/storage"
)

// TransferEventStore is an in-memory implementation of
// storage.TransferEventStore. Accounts are keyed case-insensitively.
type TransferEventStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.TransferEvent // keyed by lowercase account
}

// NewTransferEventStore creates a new in-memory transfer event store.
func NewTransferEventStore() *TransferEventStore {
	return &TransferEventStore{
		data: make(map[string][]*domain.TransferEvent),
	}
}

// InsertBulk adds multiple events. Fails the entire batch on any invalid row.
func (s *TransferEventStore) InsertBulk(_ context.Context, events []*domain.TransferEvent) error {
	for _, e := range events {
		if e == nil || e.Account == "" || e.TxHash == "" || e.Kind == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		cp := *e
		key := strings.ToLower(e.Account)
		s.data[key] = append(s.data[key], &cp)
	}
	return nil
}

// GetByAccount retrieves all cached events for an account, ordered by
// block number DESC.
func (s *TransferEventStore) GetByAccount(_ context.Context, account string) ([]*domain.TransferEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.data[strings.ToLower(account)]
	result := make([]*domain.TransferEvent, 0, len(rows))
	for _, e := range rows {
		cp := *e
		result = append(result, &cp)
	}

	sortByBlockDesc(result)
	return result, nil
}

// GetByAccountAndKind retrieves cached events of one kind for an
// account, ordered by block number DESC.
func (s *TransferEventStore) GetByAccountAndKind(_ context.Context, account string, kind domain.TransferKind) ([]*domain.TransferEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TransferEvent
	for _, e := range s.data[strings.ToLower(account)] {
		if e.Kind == kind {
			cp := *e
			result = append(result, &cp)
		}
	}

	sortByBlockDesc(result)
	return result, nil
}

// LatestBlock returns the highest cached block number for an account,
// or 0 when nothing is cached.
func (s *TransferEventStore) LatestBlock(_ context.Context, account string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest uint64
	for _, e := range s.data[strings.ToLower(account)] {
		if e.BlockNumber > latest {
			latest = e.BlockNumber
		}
	}
	return latest, nil
}

func sortByBlockDesc(events []*domain.TransferEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber > events[j].BlockNumber
		}
		return events[i].TxHash < events[j].TxHash
	})
}

// Verify interface compliance at compile time.
var _ storage.TransferEventStore = (*TransferEventStore)(nil)
