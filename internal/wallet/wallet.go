// Package wallet exposes the connected account and the capability to
// submit signed contract calls. The signing itself is delegated to an
// external provider (a wallet-backed RPC endpoint); nothing here touches
// key material.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"nft-minter/internal/domain"
	"nft-minter/internal/ethereum"
)

// Errors returned by wallet operations.
var (
	// ErrWalletUnavailable means no provider is reachable behind the session.
	ErrWalletUnavailable = errors.New("wallet: no provider available")

	// ErrUserRejected means the account-access prompt was declined.
	ErrUserRejected = errors.New("wallet: user rejected the connection request")

	// ErrNoAccounts means the provider granted access but manages no accounts.
	ErrNoAccounts = errors.New("wallet: provider returned no accounts")

	// ErrNotConnected means an operation requiring an account ran before Connect.
	ErrNotConnected = errors.New("wallet: not connected")

	// ErrContractAddressInvalid means no valid contract address was configured.
	ErrContractAddressInvalid = errors.New("wallet: contract address missing or invalid")

	// ErrSubmissionRejected means the provider declined to sign the transaction.
	ErrSubmissionRejected = errors.New("wallet: transaction signing rejected")
)

// Provider is the capability boundary to the external wallet. The
// concrete implementation signs with whatever account it manages; this
// package never sees a private key.
type Provider interface {
	// RequestAccounts asks for account access, prompting if necessary.
	RequestAccounts(ctx context.Context) ([]string, error)

	// SendTransaction signs and broadcasts a transaction, returning its hash.
	SendTransaction(ctx context.Context, msg ethereum.TxMsg) (string, error)

	// TransactionReceipt returns the mined receipt, or nil while pending.
	TransactionReceipt(ctx context.Context, hash string) (*ethereum.Receipt, error)

	// WaitForReceipt blocks until the transaction is mined or ctx ends.
	WaitForReceipt(ctx context.Context, hash string) (*ethereum.Receipt, error)
}

// Session binds one connected account to a provider. It is an explicit
// value handed to the pipeline, never read from ambient state, so tests
// substitute a fake provider freely.
type Session struct {
	provider Provider
	account  string
}

// NewSession creates an unconnected session over a provider.
func NewSession(provider Provider) *Session {
	return &Session{provider: provider}
}

// Account returns the connected account address, empty before Connect.
func (s *Session) Account() string {
	return s.account
}

// Connect requests account access and fixes the session's account to the
// provider's first (currently selected) one.
func (s *Session) Connect(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", ErrWalletUnavailable
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		var rpcErr *ethereum.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == ethereum.CodeUserRejected {
			return "", ErrUserRejected
		}
		return "", err
	}
	if len(accounts) == 0 {
		return "", ErrNoAccounts
	}

	s.account = accounts[0]
	return s.account, nil
}

// Disconnect clears the active account.
func (s *Session) Disconnect() {
	s.account = ""
}

// SubmitMint sends a mint(address,string) contract call and returns a
// pending handle as soon as the network accepts it, before inclusion.
func (s *Session) SubmitMint(ctx context.Context, contractAddr, recipient, metadataURI string) (*domain.TransactionHandle, error) {
	if s.provider == nil {
		return nil, ErrWalletUnavailable
	}
	if s.account == "" {
		return nil, ErrNotConnected
	}
	if !ethereum.IsHexAddress(contractAddr) {
		return nil, ErrContractAddressInvalid
	}

	data, err := ethereum.EncodeMintCall(recipient, metadataURI)
	if err != nil {
		return nil, err
	}

	hash, err := s.provider.SendTransaction(ctx, ethereum.TxMsg{
		From: s.account,
		To:   contractAddr,
		Data: data,
	})
	if err != nil {
		var rpcErr *ethereum.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == ethereum.CodeUserRejected {
			return nil, ErrSubmissionRejected
		}
		return nil, err
	}

	return &domain.TransactionHandle{
		Hash:   hash,
		Status: domain.TxPending,
	}, nil
}

// AwaitConfirmation blocks until the handle's transaction is mined and
// resolves its status from the receipt. No timeout of its own; callers
// bound the wait through ctx if they want one.
func (s *Session) AwaitConfirmation(ctx context.Context, handle *domain.TransactionHandle) error {
	if s.provider == nil {
		return ErrWalletUnavailable
	}

	receipt, err := s.provider.WaitForReceipt(ctx, handle.Hash)
	if err != nil {
		return err
	}

	handle.BlockNumber = receipt.BlockNumber
	if receipt.Status == ethereum.ReceiptStatusSucceeded {
		handle.Status = domain.TxConfirmed
	} else {
		handle.Status = domain.TxFailed
	}
	return nil
}

// Deploy broadcasts a contract-creation transaction and waits for the
// receipt, returning the deployed contract address.
func (s *Session) Deploy(ctx context.Context, bytecode []byte, value *big.Int) (string, *domain.TransactionHandle, error) {
	if s.provider == nil {
		return "", nil, ErrWalletUnavailable
	}
	if s.account == "" {
		return "", nil, ErrNotConnected
	}
	if len(bytecode) == 0 {
		return "", nil, errors.New("wallet: empty contract bytecode")
	}

	hash, err := s.provider.SendTransaction(ctx, ethereum.TxMsg{
		From:  s.account,
		Data:  bytecode,
		Value: value,
	})
	if err != nil {
		var rpcErr *ethereum.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == ethereum.CodeUserRejected {
			return "", nil, ErrSubmissionRejected
		}
		return "", nil, err
	}

	handle := &domain.TransactionHandle{Hash: hash, Status: domain.TxPending}

	receipt, err := s.provider.WaitForReceipt(ctx, hash)
	if err != nil {
		return "", handle, err
	}

	handle.BlockNumber = receipt.BlockNumber
	if receipt.Status == ethereum.ReceiptStatusSucceeded {
		handle.Status = domain.TxConfirmed
	} else {
		handle.Status = domain.TxFailed
		return "", handle, errors.New("wallet: contract deployment reverted")
	}
	return receipt.ContractAddress, handle, nil
}
