// Package main deploys the NFT contract from compiled bytecode and
// prints the resulting address.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"nft-minter/internal/ethereum"
	"nft-minter/internal/observability"
	"nft-minter/internal/wallet"
)

func main() {
	bytecodePath := flag.String("bytecode", "", "Path to a file holding the contract's hex bytecode")
	valueWei := flag.String("value", "0", "Wei to send with the deployment")
	rpcEndpoint := flag.String("rpc-endpoint", envOr("ETH_RPC_ENDPOINT", "http://localhost:8545"), "Ethereum RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("ETH_WS_ENDPOINT"), "Ethereum WebSocket endpoint (optional)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Deadline for deployment")

	flag.Parse()

	logger := observability.NewLogger("development")

	if *bytecodePath == "" {
		logger.Fatal().Msg("--bytecode is required")
	}

	raw, err := os.ReadFile(*bytecodePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *bytecodePath).Msg("read bytecode")
	}
	hexStr := strings.TrimPrefix(strings.TrimSpace(string(raw)), "0x")
	bytecode, err := hex.DecodeString(hexStr)
	if err != nil || len(bytecode) == 0 {
		logger.Fatal().Err(err).Msg("bytecode must be non-empty hex")
	}

	value := new(big.Int)
	if _, ok := value.SetString(*valueWei, 10); !ok {
		logger.Fatal().Str("value", *valueWei).Msg("--value must be a decimal wei amount")
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
	logger.Info().Str("account", account).Int("bytes", len(bytecode)).Msg("deploying")

	address, handle, err := session.Deploy(ctx, bytecode, value)
	if err != nil {
		if handle != nil {
			logger.Error().Str("tx", handle.Hash).Err(err).Msg("deployment failed")
		} else {
			logger.Error().Err(err).Msg("deployment failed")
		}
		os.Exit(1)
	}

	fmt.Printf("contract: %s\n", address)
	fmt.Printf("tx:       %s (block %d)\n", handle.Hash, handle.BlockNumber)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
