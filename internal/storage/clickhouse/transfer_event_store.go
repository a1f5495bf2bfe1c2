package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nft-minter/internal/domain"
	"nft-minter/internal/storage"
)

// TransferEventStore implements storage.TransferEventStore using
// ClickHouse. Duplicate rows from overlapping refreshes are collapsed
// by the ReplacingMergeTree engine; reads deduplicate with FINAL.
type TransferEventStore struct {
	conn *Conn
}

// NewTransferEventStore creates a new TransferEventStore.
func NewTransferEventStore(conn *Conn) *TransferEventStore {
	return &TransferEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TransferEventStore = (*TransferEventStore)(nil)

// InsertBulk adds multiple events. Fails the entire batch on any invalid row.
func (s *TransferEventStore) InsertBulk(ctx context.Context, events []*domain.TransferEvent) error {
	if len(events) == 0 {
		return nil
	}

	for _, e := range events {
		if e == nil || e.Account == "" || e.TxHash == "" || e.Kind == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO transfer_events (
			account, tx_hash, block_number, timestamp,
			from_address, to_address, value_wei, kind, token_id, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	now := time.Now().UnixMilli()
	for _, e := range events {
		createdAt := e.CreatedAt
		if createdAt == 0 {
			createdAt = now
		}
		err = batch.Append(
			strings.ToLower(e.Account), e.TxHash, e.BlockNumber, e.Timestamp,
			e.From, e.To, e.ValueWei, string(e.Kind), e.TokenID, createdAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAccount retrieves all cached events for an account, ordered by
// block number DESC.
func (s *TransferEventStore) GetByAccount(ctx context.Context, account string) ([]*domain.TransferEvent, error) {
	query := `
		SELECT account, tx_hash, block_number, timestamp,
		       from_address, to_address, value_wei, kind, token_id, created_at
		FROM transfer_events FINAL
		WHERE account = ?
		ORDER BY block_number DESC, tx_hash ASC
	`

	rows, err := s.conn.Query(ctx, query, strings.ToLower(account))
	if err != nil {
		return nil, fmt.Errorf("query by account: %w", err)
	}
	defer rows.Close()

	return scanTransferEvents(rows)
}

// GetByAccountAndKind retrieves cached events of one kind for an
// account, ordered by block number DESC.
func (s *TransferEventStore) GetByAccountAndKind(ctx context.Context, account string, kind domain.TransferKind) ([]*domain.TransferEvent, error) {
	query := `
		SELECT account, tx_hash, block_number, timestamp,
		       from_address, to_address, value_wei, kind, token_id, created_at
		FROM transfer_events FINAL
		WHERE account = ? AND kind = ?
		ORDER BY block_number DESC, tx_hash ASC
	`

	rows, err := s.conn.Query(ctx, query, strings.ToLower(account), string(kind))
	if err != nil {
		return nil, fmt.Errorf("query by account and kind: %w", err)
	}
	defer rows.Close()

	return scanTransferEvents(rows)
}

// LatestBlock returns the highest cached block number for an account,
// or 0 when nothing is cached.
func (s *TransferEventStore) LatestBlock(ctx context.Context, account string) (uint64, error) {
	query := `
		SELECT max(block_number) FROM transfer_events
		WHERE account = ?
	`

	var latest uint64
	err := s.conn.QueryRow(ctx, query, strings.ToLower(account)).Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("query latest block: %w", err)
	}
	return latest, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanTransferEvents scans multiple rows into a slice.
func scanTransferEvents(rows chRows) ([]*domain.TransferEvent, error) {
	var events []*domain.TransferEvent

	for rows.Next() {
		var e domain.TransferEvent
		var kind string

		err := rows.Scan(
			&e.Account, &e.TxHash, &e.BlockNumber, &e.Timestamp,
			&e.From, &e.To, &e.ValueWei, &kind, &e.TokenID, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transfer event row: %w", err)
		}

		e.Kind = domain.TransferKind(kind)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer event rows: %w", err)
	}

	return events, nil
}
