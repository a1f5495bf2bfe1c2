package dashboard

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/rs/zerolog"

	"nft-minter/internal/domain"
	"nft-minter/internal/explorer"
	"nft-minter/internal/storage/memory"
)

const testAccount = "0x1111111111111111111111111111111111111111"

type stubChain struct {
	balance *big.Int
	block   uint64
	nonce   uint64
	err     error
}

func (c *stubChain) BalanceAt(_ context.Context, _ string) (*big.Int, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.balance, nil
}

func (c *stubChain) BlockNumber(_ context.Context) (uint64, error) { return c.block, c.err }
func (c *stubChain) NonceAt(_ context.Context, _ string) (uint64, error) {
	return c.nonce, c.err
}

type stubHistory struct {
	txCalls   int
	txStart   uint64
	txs       []explorer.Transaction
	transfers []explorer.NFTTransfer
	err       error
}

func (h *stubHistory) TransactionsByAddress(_ context.Context, _ string, start uint64) ([]explorer.Transaction, error) {
	h.txCalls++
	h.txStart = start
	return h.txs, h.err
}

func (h *stubHistory) NFTTransfersByAddress(_ context.Context, _ string, _ uint64) ([]explorer.NFTTransfer, error) {
	return h.transfers, h.err
}

func newService(chain ChainReader, history HistorySource) (*Service, *memory.TransferEventStore) {
	events := memory.NewTransferEventStore()
	svc := NewService(Options{
		Chain:   chain,
		History: history,
		Events:  events,
		Logger:  zerolog.Nop(),
	})
	return svc, events
}

func TestRefreshAccount_CachesClassifiedRows(t *testing.T) {
	history := &stubHistory{
		txs: []explorer.Transaction{
			{Hash: "0xaaa", BlockNumber: "120", TimeStamp: "1704067200",
				From: testAccount, To: "0x2222", Value: "5", Input: "0x"},
			{Hash: "0xbbb", BlockNumber: "110", TimeStamp: "1704060000",
				From: testAccount, To: "0x3333", Value: "0", Input: "0xd0def52100"},
		},
		transfers: []explorer.NFTTransfer{
			{Hash: "0xccc", BlockNumber: "130", TimeStamp: "1704070000",
				From: "0x0000000000000000000000000000000000000000", To: testAccount, TokenID: "7"},
		},
	}
	svc, events := newService(&stubChain{}, history)

	if err := svc.RefreshAccount(context.Background(), testAccount); err != nil {
		t.Fatalf("RefreshAccount() error = %v", err)
	}

	all, _ := events.GetByAccount(context.Background(), testAccount)
	if len(all) != 3 {
		t.Fatalf("cached %d rows, want 3", len(all))
	}
	// Block DESC: the NFT transfer at 130 comes first.
	if all[0].Kind != domain.TransferKindNFT || all[0].TokenID != "7" {
		t.Errorf("first row = %+v", all[0])
	}
	if all[1].Kind != domain.TransferKindTransfer {
		t.Errorf("row at block 120 classified %s, want TRANSFER", all[1].Kind)
	}
	if all[2].Kind != domain.TransferKindMint {
		t.Errorf("row at block 110 classified %s, want MINT", all[2].Kind)
	}
}

func TestRefreshAccount_StartsPastCachedTip(t *testing.T) {
	history := &stubHistory{}
	svc, events := newService(&stubChain{}, history)
	ctx := context.Background()

	if err := svc.RefreshAccount(ctx, testAccount); err != nil {
		t.Fatalf("RefreshAccount() error = %v", err)
	}
	if history.txStart != 0 {
		t.Errorf("empty cache start = %d, want 0", history.txStart)
	}

	if err := events.InsertBulk(ctx, []*domain.TransferEvent{{
		Account: testAccount, TxHash: "0x01", BlockNumber: 50,
		Kind: domain.TransferKindTransfer,
	}}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	if err := svc.RefreshAccount(ctx, testAccount); err != nil {
		t.Fatalf("RefreshAccount() error = %v", err)
	}
	if history.txStart != 51 {
		t.Errorf("warm cache start = %d, want 51", history.txStart)
	}
}

func TestOverview(t *testing.T) {
	chain := &stubChain{
		balance: big.NewInt(1000000000000000000),
		block:   140,
		nonce:   12,
	}
	history := &stubHistory{
		txs: []explorer.Transaction{
			{Hash: "0xaaa", BlockNumber: "120", TimeStamp: "1704067200",
				From: testAccount, To: "0x2222", Value: "5", Input: "0x"},
		},
		transfers: []explorer.NFTTransfer{
			{Hash: "0xccc", BlockNumber: "130", TimeStamp: "1704070000",
				From: testAccount, To: "0x2222", TokenID: "3"},
		},
	}
	svc, _ := newService(chain, history)

	ov, err := svc.Overview(context.Background(), testAccount)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	if ov.BalanceWei != "1000000000000000000" {
		t.Errorf("BalanceWei = %s", ov.BalanceWei)
	}
	if ov.LatestBlock != 140 || ov.TransactionCount != 12 {
		t.Errorf("block/count = %d/%d", ov.LatestBlock, ov.TransactionCount)
	}
	if len(ov.Transactions) != 1 || ov.Transactions[0].TxHash != "0xaaa" {
		t.Errorf("Transactions = %+v", ov.Transactions)
	}
	if len(ov.NFTTransfers) != 1 || ov.NFTTransfers[0].TokenID != "3" {
		t.Errorf("NFTTransfers = %+v", ov.NFTTransfers)
	}
}

func TestOverview_ServesCacheWhenExplorerDown(t *testing.T) {
	chain := &stubChain{balance: big.NewInt(5), block: 10, nonce: 1}
	history := &stubHistory{err: errors.New("explorer down")}
	svc, events := newService(chain, history)
	ctx := context.Background()

	if err := events.InsertBulk(ctx, []*domain.TransferEvent{{
		Account: testAccount, TxHash: "0x01", BlockNumber: 5,
		Kind: domain.TransferKindTransfer,
	}}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	ov, err := svc.Overview(ctx, testAccount)
	if err != nil {
		t.Fatalf("Overview() error = %v, want cached fallback", err)
	}
	if len(ov.Transactions) != 1 {
		t.Errorf("got %d cached transactions, want 1", len(ov.Transactions))
	}
}

func TestOverview_ChainErrorFails(t *testing.T) {
	chain := &stubChain{err: errors.New("rpc down")}
	svc, _ := newService(chain, &stubHistory{})

	if _, err := svc.Overview(context.Background(), testAccount); err == nil {
		t.Fatal("expected error when the chain is unreachable")
	}
}
