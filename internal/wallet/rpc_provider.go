package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nft-minter/internal/ethereum"
)

// RPCProvider implements Provider over an Ethereum node's JSON-RPC
// endpoint. The node (or the wallet extension bridging to it) holds the
// keys and signs eth_sendTransaction calls.
//
// When a WebSocket client is present, WaitForReceipt checks the receipt
// once per new block head; otherwise it falls back to a coarse ticker.
type RPCProvider struct {
	rpc *ethereum.HTTPClient
	ws  *ethereum.WSClient

	// fallbackInterval paces receipt checks without a ws connection.
	fallbackInterval time.Duration
}

// NewRPCProvider creates a provider over HTTP RPC, with an optional
// WebSocket client (may be nil) for new-head driven confirmation.
func NewRPCProvider(rpc *ethereum.HTTPClient, ws *ethereum.WSClient) *RPCProvider {
	return &RPCProvider{
		rpc:              rpc,
		ws:               ws,
		fallbackInterval: 4 * time.Second,
	}
}

var _ Provider = (*RPCProvider)(nil)

// RequestAccounts asks the endpoint for account access. Nodes without
// the eth_requestAccounts method fall back to eth_accounts.
func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	accounts, err := p.rpc.RequestAccounts(ctx)
	if err == nil {
		return accounts, nil
	}

	var rpcErr *ethereum.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == ethereum.CodeUserRejected {
		return nil, err
	}

	// Plain nodes answer eth_accounts only.
	return p.rpc.Accounts(ctx)
}

// SendTransaction signs and broadcasts through the endpoint.
func (p *RPCProvider) SendTransaction(ctx context.Context, msg ethereum.TxMsg) (string, error) {
	return p.rpc.SendTransaction(ctx, msg)
}

// TransactionReceipt returns the mined receipt, or nil while pending.
func (p *RPCProvider) TransactionReceipt(ctx context.Context, hash string) (*ethereum.Receipt, error) {
	return p.rpc.TransactionReceipt(ctx, hash)
}

// WaitForReceipt blocks until the transaction is mined. Each new head
// (or fallback tick) triggers one receipt lookup; the wait itself is
// unbounded and is cut only by ctx.
func (p *RPCProvider) WaitForReceipt(ctx context.Context, hash string) (*ethereum.Receipt, error) {
	// The transaction may already be mined.
	receipt, err := p.rpc.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt != nil {
		return receipt, nil
	}

	if p.ws != nil {
		return p.waitWithHeads(ctx, hash)
	}
	return p.waitWithTicker(ctx, hash)
}

func (p *RPCProvider) waitWithHeads(ctx context.Context, hash string) (*ethereum.Receipt, error) {
	subID, heads, err := p.ws.SubscribeNewHeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe new heads: %w", err)
	}
	defer p.ws.Unsubscribe(subID)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case _, ok := <-heads:
			if !ok {
				// Subscription torn down; fall back to the ticker.
				return p.waitWithTicker(ctx, hash)
			}
			receipt, err := p.rpc.TransactionReceipt(ctx, hash)
			if err != nil {
				return nil, err
			}
			if receipt != nil {
				return receipt, nil
			}
		}
	}
}

func (p *RPCProvider) waitWithTicker(ctx context.Context, hash string) (*ethereum.Receipt, error) {
	ticker := time.NewTicker(p.fallbackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			receipt, err := p.rpc.TransactionReceipt(ctx, hash)
			if err != nil {
				return nil, err
			}
			if receipt != nil {
				return receipt, nil
			}
		}
	}
}
