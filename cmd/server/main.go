// Package main runs the minting service: the REST API, the mint
// pipeline behind it, and the account dashboard backed by the explorer
// cache.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nft-minter/internal/config"
	"nft-minter/internal/dashboard"
	"nft-minter/internal/ethereum"
	"nft-minter/internal/explorer"
	"nft-minter/internal/httpapi"
	"nft-minter/internal/marketplace"
	"nft-minter/internal/mint"
	"nft-minter/internal/observability"
	"nft-minter/internal/pinning"
	"nft-minter/internal/storage"
	chstore "nft-minter/internal/storage/clickhouse"
	"nft-minter/internal/storage/memory"
	"nft-minter/internal/storage/migrations"
	pgstore "nft-minter/internal/storage/postgres"
	"nft-minter/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Env)
	metrics := observability.NewMetrics("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Attempt store: postgres when a DSN is configured, memory otherwise.
	var attempts storage.AttemptStore
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("postgres migrations")
		}
		attempts = pgstore.NewAttemptStore(pool)
		logger.Info().Msg("attempt store: postgres")
	} else {
		attempts = memory.NewAttemptStore()
		logger.Info().Msg("attempt store: memory")
	}

	// Transfer cache: clickhouse when a DSN is configured.
	var events storage.TransferEventStore
	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("clickhouse migrations")
		}
		defer conn.Close()
		events = chstore.NewTransferEventStore(conn)
		logger.Info().Msg("transfer cache: clickhouse")
	} else {
		events = memory.NewTransferEventStore()
		logger.Info().Msg("transfer cache: memory")
	}

	rpc := ethereum.NewHTTPClient(cfg.RPCEndpoint, ethereum.WithTimeout(cfg.RequestTimeout))

	var ws *ethereum.WSClient
	if cfg.WSEndpoint != "" {
		ws, err = ethereum.NewWSClient(ctx, cfg.WSEndpoint, nil)
		if err != nil {
			// Receipt checks fall back to polling.
			logger.Warn().Err(err).Msg("websocket unavailable, polling for receipts")
		} else {
			defer ws.Close()
		}
	}

	session := wallet.NewSession(wallet.NewRPCProvider(rpc, ws))
	account, err := session.Connect(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect wallet account")
	}
	logger.Info().Str("account", account).Msg("wallet connected")

	pinner, err := pinning.NewClient(pinning.Options{
		APIKey:         cfg.PinataAPIKey,
		SecretKey:      cfg.PinataSecretKey,
		BaseURL:        cfg.PinataBaseURL,
		GatewayBase:    cfg.GatewayBase,
		MaxAssetSize:   cfg.MaxAssetBytes,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("pinning client")
	}

	submitter := mint.NewSubmitter(mint.Options{
		Media:           pinner,
		Metadata:        pinner,
		Wallet:          session,
		ContractAddress: cfg.ContractAddress,
		Attempts:        attempts,
		Metrics:         metrics,
		Logger:          logger,
	})

	history := explorer.NewClient(explorer.Options{
		BaseURL: cfg.ExplorerBaseURL,
		APIKey:  cfg.ExplorerAPIKey,
		Logger:  logger,
	})

	dash := dashboard.NewService(dashboard.Options{
		Chain:   rpc,
		History: history,
		Events:  events,
		Metrics: metrics,
		Logger:  logger,
	})

	gallery := marketplace.NewClient(marketplace.Options{
		BaseURL: cfg.MarketplaceURL,
		APIKey:  cfg.MarketplaceAPIKey,
		Logger:  logger,
	})

	app := &httpapi.App{
		Minter:    submitter,
		Deployer:  session,
		Attempts:  attempts,
		Dashboard: dash,
		Gallery:   gallery,
		Chain:     cfg.Chain,
		MaxUpload: cfg.MaxAssetBytes,
		Logger:    logger,
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.NewRouter(app),
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("server stopped")
}
