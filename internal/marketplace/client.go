// Package marketplace fetches collection and NFT listings from an
// OpenSea-compatible API for the gallery view.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Default client configuration values.
const (
	DefaultBaseURL          = "https://api.opensea.io/api/v2"
	DefaultTimeout          = 15 * time.Second
	DefaultCollectionsLimit = 9
)

// Contract identifies a collection's on-chain deployment.
type Contract struct {
	Address string `json:"address"`
	Chain   string `json:"chain"`
}

// Collection is one marketplace collection listing.
type Collection struct {
	Name       string     `json:"name"`
	Owner      string     `json:"owner"`
	ImageURL   string     `json:"image_url"`
	OpenseaURL string     `json:"opensea_url"`
	Contracts  []Contract `json:"contracts"`
}

// NFT is one token owned by an account.
type NFT struct {
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
	ImageURL      string `json:"image_url"`
	TokenStandard string `json:"token_standard"`
	Contract      string `json:"contract"`
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client queries an OpenSea-compatible marketplace API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a marketplace client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
	}
}

// Collections returns up to limit collection listings, filtered to
// those with an image and an on-chain owner.
func (c *Client) Collections(ctx context.Context, limit int) ([]Collection, error) {
	if limit <= 0 {
		limit = DefaultCollectionsLimit
	}

	var payload struct {
		Collections []Collection `json:"collections"`
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/collections?"+params.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("fetch collections: %w", err)
	}

	filtered := make([]Collection, 0, len(payload.Collections))
	for _, col := range payload.Collections {
		if col.ImageURL == "" || !strings.HasPrefix(col.Owner, "0x") {
			continue
		}
		filtered = append(filtered, col)
	}
	return filtered, nil
}

// AccountNFTs returns the NFTs an account owns on the given chain.
func (c *Client) AccountNFTs(ctx context.Context, chain, address string) ([]NFT, error) {
	if chain == "" || address == "" {
		return nil, fmt.Errorf("chain and address are required")
	}

	var payload struct {
		NFTs []NFT `json:"nfts"`
	}
	path := fmt.Sprintf("/chain/%s/account/%s/nfts", url.PathEscape(chain), url.PathEscape(address))
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("fetch nfts for %s on %s: %w", address, chain, err)
	}
	return payload.NFTs, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("marketplace request rejected")
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
