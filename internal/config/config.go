// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting. Values come from the environment,
// optionally seeded from .env files.
type Config struct {
	Env  string
	Port string

	// Ethereum endpoints
	RPCEndpoint     string
	WSEndpoint      string
	ContractAddress string

	// Pinning service credentials
	PinataAPIKey    string
	PinataSecretKey string
	PinataBaseURL   string
	GatewayBase     string

	// Explorer and marketplace
	ExplorerBaseURL   string
	ExplorerAPIKey    string
	MarketplaceURL    string
	MarketplaceAPIKey string
	Chain             string

	// Storage
	PostgresDSN   string
	ClickhouseDSN string

	// Limits
	MaxAssetBytes   int64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment. Missing .env files are
// not an error; missing required values are.
func Load() (Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	c := Config{
		Env:  getenv("APP_ENV", "development"),
		Port: getenv("PORT", "8080"),

		RPCEndpoint:     getenv("ETH_RPC_ENDPOINT", "http://localhost:8545"),
		WSEndpoint:      getenv("ETH_WS_ENDPOINT", ""),
		ContractAddress: os.Getenv("NFT_CONTRACT_ADDRESS"),

		PinataAPIKey:    os.Getenv("PINATA_API_KEY"),
		PinataSecretKey: os.Getenv("PINATA_SECRET_API_KEY"),
		PinataBaseURL:   getenv("PINATA_BASE_URL", "https://api.pinata.cloud"),
		GatewayBase:     getenv("IPFS_GATEWAY_BASE", "https://gateway.pinata.cloud/ipfs/"),

		ExplorerBaseURL:   getenv("EXPLORER_BASE_URL", "https://api.etherscan.io/api"),
		ExplorerAPIKey:    os.Getenv("EXPLORER_API_KEY"),
		MarketplaceURL:    getenv("MARKETPLACE_BASE_URL", "https://api.opensea.io/api/v2"),
		MarketplaceAPIKey: os.Getenv("MARKETPLACE_API_KEY"),
		Chain:             getenv("CHAIN", "ethereum"),

		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),

		MaxAssetBytes:   getenvInt64("MAX_ASSET_BYTES", 25<<20),
		RequestTimeout:  getenvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if c.PinataAPIKey == "" || c.PinataSecretKey == "" {
		return Config{}, fmt.Errorf("PINATA_API_KEY and PINATA_SECRET_API_KEY are required")
	}
	if c.ContractAddress == "" {
		return Config{}, fmt.Errorf("NFT_CONTRACT_ADDRESS is required")
	}

	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
