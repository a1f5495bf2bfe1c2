package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nft-minter/internal/domain"
	"nft-minter/internal/storage"
)

// AttemptStore implements storage.AttemptStore using PostgreSQL.
// Image bytes are not persisted; the pinned media URI is the durable
// reference.
type AttemptStore struct {
	pool *Pool
}

// NewAttemptStore creates a new AttemptStore.
func NewAttemptStore(pool *Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AttemptStore = (*AttemptStore)(nil)

const attemptColumns = `
	id, account, name, description, content_type,
	media_uri, metadata_uri,
	tx_hash, tx_status, tx_block,
	state, failure_reason, failure_message,
	started_at, finished_at
`

// Insert adds a finished attempt. Returns ErrDuplicateKey if its ID
// exists and ErrInvalidInput if the attempt is not terminal.
func (s *AttemptStore) Insert(ctx context.Context, a *domain.Attempt) error {
	if a == nil || a.ID == "" || a.Account == "" || !a.State.Terminal() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO mint_attempts (` + attemptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	var txHash, txStatus *string
	var txBlock *int64
	if a.Tx != nil {
		txHash = &a.Tx.Hash
		status := string(a.Tx.Status)
		txStatus = &status
		block := int64(a.Tx.BlockNumber)
		txBlock = &block
	}

	var failureReason, failureMessage *string
	if a.Failure != nil {
		reason := string(a.Failure.Reason)
		failureReason = &reason
		failureMessage = &a.Failure.Message
	}

	_, err := s.pool.Exec(ctx, query,
		a.ID,
		a.Account,
		a.Input.Name,
		a.Input.Description,
		a.Input.ContentType,
		a.MediaURI,
		a.MetadataURI,
		txHash,
		txStatus,
		txBlock,
		string(a.State),
		failureReason,
		failureMessage,
		a.StartedAt,
		a.FinishedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// GetByID retrieves an attempt by its ID. Returns ErrNotFound if not exists.
func (s *AttemptStore) GetByID(ctx context.Context, id string) (*domain.Attempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM mint_attempts
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	a, err := scanAttempt(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get attempt by id: %w", err)
	}
	return a, nil
}

// GetByAccount retrieves all attempts for an account, newest first.
func (s *AttemptStore) GetByAccount(ctx context.Context, account string) ([]*domain.Attempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM mint_attempts
		WHERE account = $1
		ORDER BY started_at DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("get attempts by account: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// List retrieves the most recent attempts across all accounts, newest
// first, capped at limit.
func (s *AttemptStore) List(ctx context.Context, limit int) ([]*domain.Attempt, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ` + attemptColumns + `
		FROM mint_attempts
		ORDER BY started_at DESC, id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// scanAttempt scans a single row into an Attempt.
func scanAttempt(row pgx.Row) (*domain.Attempt, error) {
	var a domain.Attempt
	var stateStr string
	var txHash, txStatus *string
	var txBlock *int64
	var failureReason, failureMessage *string

	err := row.Scan(
		&a.ID,
		&a.Account,
		&a.Input.Name,
		&a.Input.Description,
		&a.Input.ContentType,
		&a.MediaURI,
		&a.MetadataURI,
		&txHash,
		&txStatus,
		&txBlock,
		&stateStr,
		&failureReason,
		&failureMessage,
		&a.StartedAt,
		&a.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	a.State = domain.State(stateStr)
	if txHash != nil {
		a.Tx = &domain.TransactionHandle{Hash: *txHash}
		if txStatus != nil {
			a.Tx.Status = domain.TxStatus(*txStatus)
		}
		if txBlock != nil {
			a.Tx.BlockNumber = uint64(*txBlock)
		}
	}
	if failureReason != nil {
		a.Failure = &domain.Failure{Reason: domain.FailureReason(*failureReason)}
		if failureMessage != nil {
			a.Failure.Message = *failureMessage
		}
	}
	return &a, nil
}

// scanAttempts scans multiple rows into a slice of Attempt.
func scanAttempts(rows pgx.Rows) ([]*domain.Attempt, error) {
	var attempts []*domain.Attempt

	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt row: %w", err)
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempt rows: %w", err)
	}

	return attempts, nil
}
