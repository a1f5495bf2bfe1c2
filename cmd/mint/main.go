// Package main mints a single NFT from the command line: pin the image,
// pin the metadata document, submit the mint call and wait for it to be
// mined.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"nft-minter/internal/domain"
	"nft-minter/internal/ethereum"
	"nft-minter/internal/mint"
	"nft-minter/internal/observability"
	"nft-minter/internal/pinning"
	"nft-minter/internal/storage/memory"
	"nft-minter/internal/wallet"
)

func main() {
	imagePath := flag.String("image", "", "Path to the image file to mint")
	name := flag.String("name", "", "Token name")
	description := flag.String("description", "", "Token description")
	contract := flag.String("contract", os.Getenv("NFT_CONTRACT_ADDRESS"), "Deployed NFT contract address")
	rpcEndpoint := flag.String("rpc-endpoint", envOr("ETH_RPC_ENDPOINT", "http://localhost:8545"), "Ethereum RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("ETH_WS_ENDPOINT"), "Ethereum WebSocket endpoint (optional)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall deadline for the attempt")

	flag.Parse()

	logger := observability.NewLogger("development")

	if *imagePath == "" || *name == "" || *description == "" {
		logger.Fatal().Msg("--image, --name and --description are required")
	}
	if *contract == "" {
		logger.Fatal().Msg("--contract (or NFT_CONTRACT_ADDRESS) is required")
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *imagePath).Msg("read image")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rpc := ethereum.NewHTTPClient(*rpcEndpoint)

	var ws *ethereum.WSClient
	if *wsEndpoint != "" {
		ws, err = ethereum.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
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
		APIKey:    os.Getenv("PINATA_API_KEY"),
		SecretKey: os.Getenv("PINATA_SECRET_API_KEY"),
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("pinning client")
	}

	submitter := mint.NewSubmitter(mint.Options{
		Media:           pinner,
		Metadata:        pinner,
		Wallet:          session,
		ContractAddress: *contract,
		Attempts:        memory.NewAttemptStore(),
		Observer: func(a domain.Attempt) {
			event := logger.Info().Str("state", string(a.State))
			if a.Tx != nil {
				event = event.Str("tx", a.Tx.Hash)
			}
			event.Msg("attempt")
		},
		Logger: logger,
	})

	attempt, err := submitter.Submit(ctx, domain.MintInput{
		Name:        *name,
		Description: *description,
		Image:       image,
		ContentType: contentTypeFor(*imagePath, image),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("mint")
	}

	if attempt.State == domain.StateFailed {
		logger.Error().
			Str("reason", string(attempt.Failure.Reason)).
			Str("message", attempt.Failure.Message).
			Msg("mint failed")
		os.Exit(1)
	}

	fmt.Printf("minted: tx %s in block %d\n", attempt.Tx.Hash, attempt.Tx.BlockNumber)
	fmt.Printf("metadata: %s\n", attempt.MetadataURI)
	fmt.Printf("media:    %s\n", attempt.MediaURI)
}

// contentTypeFor prefers the extension, falling back to sniffing.
func contentTypeFor(path string, data []byte) string {
	switch filepath.Ext(path) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	}
	return http.DetectContentType(data)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
