package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-minter/internal/domain"
	"nft-minter/internal/storage"
)

func confirmedAttempt(id, account string, startedAt time.Time) *domain.Attempt {
	return &domain.Attempt{
		ID:      id,
		Account: account,
		Input: domain.MintInput{
			Name:        "Sunset",
			Description: "A sunset over the bay",
			ContentType: "image/png",
		},
		MediaURI:    "https://gateway.pinata.cloud/ipfs/QmMedia",
		MetadataURI: "https://gateway.pinata.cloud/ipfs/QmMeta",
		Tx: &domain.TransactionHandle{
			Hash:        "0xf00d",
			Status:      domain.TxConfirmed,
			BlockNumber: 77,
		},
		State:      domain.StateConfirmed,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(12 * time.Second),
	}
}

func failedAttempt(id, account string, startedAt time.Time) *domain.Attempt {
	return &domain.Attempt{
		ID:      id,
		Account: account,
		Input: domain.MintInput{
			Name:        "Sunset",
			Description: "A sunset over the bay",
		},
		State: domain.StateFailed,
		Failure: &domain.Failure{
			Reason:  domain.FailureMediaPin,
			Message: "Invalid API key provided",
		},
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(2 * time.Second),
	}
}

func TestAttemptStore_InsertAndGetConfirmed(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAttemptStore(pool)
	ctx := context.Background()

	a := confirmedAttempt("att-1", "0x1111", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, a))

	got, err := store.GetByID(ctx, "att-1")
	require.NoError(t, err)

	assert.Equal(t, a.Account, got.Account)
	assert.Equal(t, a.Input.Name, got.Input.Name)
	assert.Equal(t, a.MediaURI, got.MediaURI)
	assert.Equal(t, a.MetadataURI, got.MetadataURI)
	assert.Equal(t, domain.StateConfirmed, got.State)
	require.NotNil(t, got.Tx)
	assert.Equal(t, "0xf00d", got.Tx.Hash)
	assert.Equal(t, domain.TxConfirmed, got.Tx.Status)
	assert.Equal(t, uint64(77), got.Tx.BlockNumber)
	assert.Nil(t, got.Failure)
}

func TestAttemptStore_InsertAndGetFailed(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAttemptStore(pool)
	ctx := context.Background()

	a := failedAttempt("att-1", "0x1111", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, a))

	got, err := store.GetByID(ctx, "att-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StateFailed, got.State)
	assert.Nil(t, got.Tx)
	require.NotNil(t, got.Failure)
	assert.Equal(t, domain.FailureMediaPin, got.Failure.Reason)
	assert.Equal(t, "Invalid API key provided", got.Failure.Message)
}

func TestAttemptStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAttemptStore(pool)
	ctx := context.Background()

	a := confirmedAttempt("att-1", "0x1111", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, a))

	err := store.Insert(ctx, a)
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey), "got %v", err)
}

func TestAttemptStore_RejectsNonTerminal(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAttemptStore(pool)

	a := confirmedAttempt("att-1", "0x1111", time.Now().UTC())
	a.State = domain.StatePinningMedia

	err := store.Insert(context.Background(), a)
	assert.True(t, errors.Is(err, storage.ErrInvalidInput), "got %v", err)
}

func TestAttemptStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAttemptStore(pool)

	_, err := store.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
}

func TestAttemptStore_GetByAccountNewestFirst(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAttemptStore(pool)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, store.Insert(ctx, confirmedAttempt("att-1", "0x1111", base)))
	require.NoError(t, store.Insert(ctx, failedAttempt("att-2", "0x1111", base.Add(time.Minute))))
	require.NoError(t, store.Insert(ctx, confirmedAttempt("att-3", "0x2222", base)))

	got, err := store.GetByAccount(ctx, "0x1111")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "att-2", got[0].ID)
	assert.Equal(t, "att-1", got[1].ID)
}

func TestAttemptStore_ListLimit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAttemptStore(pool)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 4; i++ {
		a := confirmedAttempt(
			"att-"+string(rune('a'+i)),
			"0x1111",
			base.Add(time.Duration(i)*time.Second),
		)
		require.NoError(t, store.Insert(ctx, a))
	}

	got, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "att-d", got[0].ID)
	assert.Equal(t, "att-c", got[1].ID)

	_, err = store.List(ctx, 0)
	assert.True(t, errors.Is(err, storage.ErrInvalidInput), "got %v", err)
}
