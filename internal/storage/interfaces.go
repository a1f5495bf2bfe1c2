package storage

import (
	"context"

	"nft-minter/internal/domain"
)

// AttemptStore provides access to mint_attempts storage. Attempts are
// recorded once, at their terminal state, and never updated.
type AttemptStore interface {
	// Insert adds a finished attempt. Returns ErrDuplicateKey if its ID
	// exists and ErrInvalidInput if the attempt is not terminal.
	Insert(ctx context.Context, a *domain.Attempt) error

	// GetByID retrieves an attempt by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Attempt, error)

	// GetByAccount retrieves all attempts for an account, newest first.
	GetByAccount(ctx context.Context, account string) ([]*domain.Attempt, error)

	// List retrieves the most recent attempts across all accounts,
	// newest first, capped at limit.
	List(ctx context.Context, limit int) ([]*domain.Attempt, error)
}

// TransferEventStore caches explorer transaction history for the
// account dashboards. Rows are append-only; a refresh appends the rows
// past the last cached block.
type TransferEventStore interface {
	// InsertBulk adds multiple events. Fails the entire batch on any
	// invalid row.
	InsertBulk(ctx context.Context, events []*domain.TransferEvent) error

	// GetByAccount retrieves all cached events for an account, ordered
	// by block number DESC.
	GetByAccount(ctx context.Context, account string) ([]*domain.TransferEvent, error)

	// GetByAccountAndKind retrieves cached events of one kind for an
	// account, ordered by block number DESC.
	GetByAccountAndKind(ctx context.Context, account string, kind domain.TransferKind) ([]*domain.TransferEvent, error)

	// LatestBlock returns the highest cached block number for an
	// account, or 0 when nothing is cached.
	LatestBlock(ctx context.Context, account string) (uint64, error)
}
