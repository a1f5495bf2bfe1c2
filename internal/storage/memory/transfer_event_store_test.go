package memory

import (
	"context"
	"errors"
	"testing"

	"nft-minter/internal/domain"
	"nft-minter/internal/storage"
)

func transferEvent(account, hash string, block uint64, kind domain.TransferKind) *domain.TransferEvent {
	return &domain.TransferEvent{
		Account:     account,
		TxHash:      hash,
		BlockNumber: block,
		Timestamp:   1704067200,
		From:        account,
		To:          "0x9999",
		ValueWei:    "1000000000000000000",
		Kind:        kind,
	}
}

func TestTransferEventStore_InsertBulkAndGet(t *testing.T) {
	store := NewTransferEventStore()
	ctx := context.Background()

	events := []*domain.TransferEvent{
		transferEvent("0xAAAA", "0x01", 10, domain.TransferKindTransfer),
		transferEvent("0xAAAA", "0x02", 30, domain.TransferKindNFT),
		transferEvent("0xAAAA", "0x03", 20, domain.TransferKindTransfer),
	}
	if err := store.InsertBulk(ctx, events); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByAccount(ctx, "0xAAAA")
	if err != nil {
		t.Fatalf("GetByAccount failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	// Block number DESC
	for i, wantBlock := range []uint64{30, 20, 10} {
		if got[i].BlockNumber != wantBlock {
			t.Errorf("position %d: block %d, want %d", i, got[i].BlockNumber, wantBlock)
		}
	}
}

func TestTransferEventStore_AccountCaseInsensitive(t *testing.T) {
	store := NewTransferEventStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.TransferEvent{
		transferEvent("0xAbCd", "0x01", 5, domain.TransferKindMint),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByAccount(ctx, "0xABCD")
	if err != nil {
		t.Fatalf("GetByAccount failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d events, want 1", len(got))
	}
}

func TestTransferEventStore_GetByAccountAndKind(t *testing.T) {
	store := NewTransferEventStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.TransferEvent{
		transferEvent("0xAAAA", "0x01", 10, domain.TransferKindTransfer),
		transferEvent("0xAAAA", "0x02", 20, domain.TransferKindNFT),
		transferEvent("0xAAAA", "0x03", 30, domain.TransferKindNFT),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByAccountAndKind(ctx, "0xAAAA", domain.TransferKindNFT)
	if err != nil {
		t.Fatalf("GetByAccountAndKind failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].BlockNumber != 30 || got[1].BlockNumber != 20 {
		t.Errorf("order mismatch: %d, %d", got[0].BlockNumber, got[1].BlockNumber)
	}
}

func TestTransferEventStore_LatestBlock(t *testing.T) {
	store := NewTransferEventStore()
	ctx := context.Background()

	latest, err := store.LatestBlock(ctx, "0xAAAA")
	if err != nil {
		t.Fatalf("LatestBlock failed: %v", err)
	}
	if latest != 0 {
		t.Errorf("empty store latest = %d, want 0", latest)
	}

	if err := store.InsertBulk(ctx, []*domain.TransferEvent{
		transferEvent("0xAAAA", "0x01", 10, domain.TransferKindTransfer),
		transferEvent("0xAAAA", "0x02", 42, domain.TransferKindTransfer),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	latest, err = store.LatestBlock(ctx, "0xAAAA")
	if err != nil {
		t.Fatalf("LatestBlock failed: %v", err)
	}
	if latest != 42 {
		t.Errorf("latest = %d, want 42", latest)
	}
}

func TestTransferEventStore_InvalidRowFailsBatch(t *testing.T) {
	store := NewTransferEventStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.TransferEvent{
		transferEvent("0xAAAA", "0x01", 10, domain.TransferKindTransfer),
		{Account: "0xAAAA"}, // missing tx hash and kind
	})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("InsertBulk: got %v, want ErrInvalidInput", err)
	}

	got, _ := store.GetByAccount(ctx, "0xAAAA")
	if len(got) != 0 {
		t.Errorf("partial batch persisted: %d events", len(got))
	}
}
