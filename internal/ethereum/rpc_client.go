package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// EIP-1193 provider error codes surfaced by wallet-backed RPC endpoints.
const (
	CodeUserRejected = 4001
)

// HTTPClient implements RPCClient using HTTP JSON-RPC 2.0 against an
// Ethereum node (or a wallet-backed endpoint that manages accounts).
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for read calls.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Ethereum RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object. Wallet-backed endpoints use
// EIP-1193 codes (4001 = request rejected by the user).
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
// RPC-level errors are returned immediately; only transport failures
// are retried.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		err := c.callOnce(ctx, method, params, result)
		if err == nil {
			return nil
		}
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// callOnce performs exactly one JSON-RPC round trip. State-changing
// methods (eth_sendTransaction) go through here directly: a transport
// retry could double-submit a signed transaction.
func (c *HTTPClient) callOnce(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}

// Accounts returns the accounts managed by the endpoint (eth_accounts).
func (c *HTTPClient) Accounts(ctx context.Context) ([]string, error) {
	var result []string
	if err := c.call(ctx, "eth_accounts", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// RequestAccounts asks the endpoint for account access
// (eth_requestAccounts). Wallet-backed endpoints may prompt the user;
// a declined prompt surfaces as an RPCError with code 4001.
func (c *HTTPClient) RequestAccounts(ctx context.Context) ([]string, error) {
	var result []string
	if err := c.callOnce(ctx, "eth_requestAccounts", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SendTransaction submits a transaction for signing by the endpoint's
// account (eth_sendTransaction) and returns the transaction hash.
// Exactly one round trip; never retried.
func (c *HTTPClient) SendTransaction(ctx context.Context, msg TxMsg) (string, error) {
	params := []interface{}{msg.toRPC()}
	var hash string
	if err := c.callOnce(ctx, "eth_sendTransaction", params, &hash); err != nil {
		return "", err
	}
	return hash, nil
}

// TransactionReceipt retrieves the receipt for a mined transaction
// (eth_getTransactionReceipt). Returns nil, nil while the transaction
// is still pending.
func (c *HTTPClient) TransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	params := []interface{}{hash}
	var raw *rpcReceipt
	if err := c.call(ctx, "eth_getTransactionReceipt", params, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return raw.toDomain()
}

// BalanceAt retrieves the balance of an address at the latest block.
func (c *HTTPClient) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	params := []interface{}{address, "latest"}
	var result string
	if err := c.call(ctx, "eth_getBalance", params, &result); err != nil {
		return nil, err
	}
	return parseQuantityBig(result)
}

// BlockNumber retrieves the latest block number.
func (c *HTTPClient) BlockNumber(ctx context.Context) (uint64, error) {
	var result string
	if err := c.call(ctx, "eth_blockNumber", nil, &result); err != nil {
		return 0, err
	}
	return parseQuantity(result)
}

// ChainID retrieves the chain ID of the connected network.
func (c *HTTPClient) ChainID(ctx context.Context) (uint64, error) {
	var result string
	if err := c.call(ctx, "eth_chainId", nil, &result); err != nil {
		return 0, err
	}
	return parseQuantity(result)
}

// NonceAt retrieves the transaction count of an address at the latest block.
func (c *HTTPClient) NonceAt(ctx context.Context, address string) (uint64, error) {
	params := []interface{}{address, "latest"}
	var result string
	if err := c.call(ctx, "eth_getTransactionCount", params, &result); err != nil {
		return 0, err
	}
	return parseQuantity(result)
}

// rpcReceipt is the raw RPC shape of eth_getTransactionReceipt.
type rpcReceipt struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     string `json:"blockNumber"`
	Status          string `json:"status"`
	GasUsed         string `json:"gasUsed"`
	ContractAddress string `json:"contractAddress"`
}

func (r *rpcReceipt) toDomain() (*Receipt, error) {
	status, err := parseQuantity(r.Status)
	if err != nil {
		return nil, fmt.Errorf("parse receipt status: %w", err)
	}
	blockNum, err := parseQuantity(r.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("parse receipt block number: %w", err)
	}
	gasUsed, err := parseQuantity(r.GasUsed)
	if err != nil {
		return nil, fmt.Errorf("parse receipt gas used: %w", err)
	}
	return &Receipt{
		TxHash:          r.TransactionHash,
		BlockNumber:     blockNum,
		Status:          status,
		GasUsed:         gasUsed,
		ContractAddress: r.ContractAddress,
	}, nil
}
