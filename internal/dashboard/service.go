// Package dashboard assembles account overview data from the chain,
// the block explorer and the local transfer cache.
package dashboard

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"nft-minter/internal/domain"
	"nft-minter/internal/explorer"
	"nft-minter/internal/observability"
	"nft-minter/internal/storage"
)

// ChainReader is the slice of the RPC client the dashboard needs.
type ChainReader interface {
	BalanceAt(ctx context.Context, address string) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	NonceAt(ctx context.Context, address string) (uint64, error)
}

// HistorySource fetches account history from a block explorer.
type HistorySource interface {
	TransactionsByAddress(ctx context.Context, address string, startBlock uint64) ([]explorer.Transaction, error)
	NFTTransfersByAddress(ctx context.Context, address string, startBlock uint64) ([]explorer.NFTTransfer, error)
}

// Overview is the account summary served to the UI.
type Overview struct {
	Account          string                  `json:"account"`
	BalanceWei       string                  `json:"balance_wei"`
	TransactionCount uint64                  `json:"transaction_count"`
	LatestBlock      uint64                  `json:"latest_block"`
	Transactions     []*domain.TransferEvent `json:"transactions"`
	NFTTransfers     []*domain.TransferEvent `json:"nft_transfers"`
}

// Options configures a Service.
type Options struct {
	Chain   ChainReader
	History HistorySource
	Events  storage.TransferEventStore
	Metrics *observability.Metrics // optional
	Logger  zerolog.Logger

	// TransactionsShown caps the rows returned in an overview.
	TransactionsShown int
}

// DefaultTransactionsShown caps the overview's history table.
const DefaultTransactionsShown = 20

// Service serves account dashboards. History rows are cached in the
// transfer event store so repeated overviews only fetch blocks past the
// cached tip.
type Service struct {
	chain   ChainReader
	history HistorySource
	events  storage.TransferEventStore
	metrics *observability.Metrics
	logger  zerolog.Logger
	shown   int
}

// NewService creates a dashboard service.
func NewService(opts Options) *Service {
	if opts.TransactionsShown <= 0 {
		opts.TransactionsShown = DefaultTransactionsShown
	}
	return &Service{
		chain:   opts.Chain,
		history: opts.History,
		events:  opts.Events,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		shown:   opts.TransactionsShown,
	}
}

// RefreshAccount fetches explorer history past the cached tip and
// appends it to the transfer cache.
func (s *Service) RefreshAccount(ctx context.Context, account string) error {
	latest, err := s.events.LatestBlock(ctx, account)
	if err != nil {
		return fmt.Errorf("cached tip for %s: %w", account, err)
	}
	start := uint64(0)
	if latest > 0 {
		start = latest + 1
	}

	txs, err := s.history.TransactionsByAddress(ctx, account, start)
	s.recordExplorer("txlist", err)
	if err != nil {
		s.recordRefresh("error")
		return fmt.Errorf("refresh transactions: %w", err)
	}
	transfers, err := s.history.NFTTransfersByAddress(ctx, account, start)
	s.recordExplorer("tokennfttx", err)
	if err != nil {
		s.recordRefresh("error")
		return fmt.Errorf("refresh nft transfers: %w", err)
	}

	rows := make([]*domain.TransferEvent, 0, len(txs)+len(transfers))
	now := time.Now().UnixMilli()
	for _, tx := range txs {
		rows = append(rows, &domain.TransferEvent{
			Account:     account,
			TxHash:      tx.Hash,
			BlockNumber: parseDecimal(tx.BlockNumber),
			Timestamp:   int64(parseDecimal(tx.TimeStamp)),
			From:        tx.From,
			To:          tx.To,
			ValueWei:    tx.Value,
			Kind:        explorer.Classify(tx),
			CreatedAt:   now,
		})
	}
	for _, tr := range transfers {
		rows = append(rows, &domain.TransferEvent{
			Account:     account,
			TxHash:      tr.Hash,
			BlockNumber: parseDecimal(tr.BlockNumber),
			Timestamp:   int64(parseDecimal(tr.TimeStamp)),
			From:        tr.From,
			To:          tr.To,
			ValueWei:    "0",
			Kind:        domain.TransferKindNFT,
			TokenID:     tr.TokenID,
			CreatedAt:   now,
		})
	}

	if len(rows) == 0 {
		s.recordRefresh("empty")
		return nil
	}

	if err := s.events.InsertBulk(ctx, rows); err != nil {
		s.recordRefresh("error")
		return fmt.Errorf("cache refresh rows: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TransferRowsCached.Add(float64(len(rows)))
	}
	s.recordRefresh("ok")
	s.logger.Debug().
		Str("account", account).
		Int("rows", len(rows)).
		Uint64("from_block", start).
		Msg("dashboard cache refreshed")
	return nil
}

// Overview refreshes the account's history and returns its summary.
// A refresh failure degrades to cached rows instead of failing the
// overview.
func (s *Service) Overview(ctx context.Context, account string) (*Overview, error) {
	if err := s.RefreshAccount(ctx, account); err != nil {
		s.logger.Warn().Err(err).Str("account", account).Msg("serving overview from cache only")
	}

	balance, err := s.chain.BalanceAt(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}
	block, err := s.chain.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch block number: %w", err)
	}
	nonce, err := s.chain.NonceAt(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction count: %w", err)
	}

	all, err := s.events.GetByAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("read cached history: %w", err)
	}
	nfts, err := s.events.GetByAccountAndKind(ctx, account, domain.TransferKindNFT)
	if err != nil {
		return nil, fmt.Errorf("read cached nft transfers: %w", err)
	}

	var txRows []*domain.TransferEvent
	for _, e := range all {
		if e.Kind == domain.TransferKindNFT {
			continue
		}
		if len(txRows) == s.shown {
			break
		}
		txRows = append(txRows, e)
	}
	nftRows := nfts
	if len(nftRows) > s.shown {
		nftRows = nftRows[:s.shown]
	}

	return &Overview{
		Account:          account,
		BalanceWei:       balance.String(),
		TransactionCount: nonce,
		LatestBlock:      block,
		Transactions:     txRows,
		NFTTransfers:     nftRows,
	}, nil
}

func (s *Service) recordRefresh(status string) {
	if s.metrics != nil {
		s.metrics.DashboardRefreshes.WithLabelValues(status).Inc()
	}
}

func (s *Service) recordExplorer(endpoint string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.ExplorerRequests.WithLabelValues(endpoint, outcome).Inc()
}

// parseDecimal converts the explorer's decimal strings; malformed
// values come back as 0 rather than failing the whole refresh.
func parseDecimal(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
