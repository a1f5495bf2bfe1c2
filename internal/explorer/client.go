// Package explorer fetches account history from an Etherscan-compatible
// block explorer API.
package explorer

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
	DefaultBaseURL = "https://api.etherscan.io/api"
	DefaultTimeout = 15 * time.Second
	DefaultOffset  = 999
)

// Transaction is one row of the explorer's txlist result. Numeric
// fields arrive as decimal strings.
type Transaction struct {
	Hash        string `json:"hash"`
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	Input       string `json:"input"`
	GasUsed     string `json:"gasUsed"`
	GasPrice    string `json:"gasPrice"`
	IsError     string `json:"isError"`
}

// NFTTransfer is one row of the explorer's tokennfttx result.
type NFTTransfer struct {
	Hash        string `json:"hash"`
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	From        string `json:"from"`
	To          string `json:"to"`
	TokenID     string `json:"tokenID"`
	TokenName   string `json:"tokenName"`
	TokenSymbol string `json:"tokenSymbol"`
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Offset     int // page size, explorer caps at 10000
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client queries an Etherscan-compatible API. Not every deployment
// requires a key; an empty APIKey is simply omitted.
type Client struct {
	baseURL string
	apiKey  string
	offset  int
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates an explorer client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Offset <= 0 {
		opts.Offset = DefaultOffset
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		offset:  opts.Offset,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
	}
}

// TransactionsByAddress returns the account's transactions from
// startBlock onward, newest first.
func (c *Client) TransactionsByAddress(ctx context.Context, address string, startBlock uint64) ([]Transaction, error) {
	params := url.Values{
		"module":     {"account"},
		"action":     {"txlist"},
		"address":    {address},
		"startblock": {strconv.FormatUint(startBlock, 10)},
		"endblock":   {"99999999"},
		"page":       {"1"},
		"offset":     {strconv.Itoa(c.offset)},
		"sort":       {"desc"},
	}

	var txs []Transaction
	if err := c.get(ctx, params, &txs); err != nil {
		return nil, fmt.Errorf("fetch transactions for %s: %w", address, err)
	}
	return txs, nil
}

// NFTTransfersByAddress returns the account's ERC-721 transfers from
// startBlock onward, newest first.
func (c *Client) NFTTransfersByAddress(ctx context.Context, address string, startBlock uint64) ([]NFTTransfer, error) {
	params := url.Values{
		"module":     {"account"},
		"action":     {"tokennfttx"},
		"address":    {address},
		"startblock": {strconv.FormatUint(startBlock, 10)},
		"endblock":   {"99999999"},
		"page":       {"1"},
		"offset":     {strconv.Itoa(c.offset)},
		"sort":       {"desc"},
	}

	var transfers []NFTTransfer
	if err := c.get(ctx, params, &transfers); err != nil {
		return nil, fmt.Errorf("fetch nft transfers for %s: %w", address, err)
	}
	return transfers, nil
}

// get performs one API request and decodes the result list into out.
// Status "0" with an empty result means no rows, not an error.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
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
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if env.Status != "1" {
		// "No transactions found" arrives as status 0 with an empty list.
		if strings.HasPrefix(env.Message, "No transactions found") {
			return nil
		}
		return fmt.Errorf("explorer error: %s", env.Message)
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
