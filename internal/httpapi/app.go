// Package httpapi serves the minting dapp's REST surface.
package httpapi

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"nft-minter/internal/dashboard"
	"nft-minter/internal/domain"
	"nft-minter/internal/marketplace"
	"nft-minter/internal/storage"
)

// Minter runs mint attempts.
type Minter interface {
	Submit(ctx context.Context, input domain.MintInput) (*domain.Attempt, error)
}

// Deployer submits contract-creation transactions.
type Deployer interface {
	Deploy(ctx context.Context, bytecode []byte, value *big.Int) (string, *domain.TransactionHandle, error)
}

// Overviewer serves account dashboards.
type Overviewer interface {
	Overview(ctx context.Context, account string) (*dashboard.Overview, error)
}

// Gallery serves marketplace collection listings and per-account NFTs.
type Gallery interface {
	Collections(ctx context.Context, limit int) ([]marketplace.Collection, error)
	AccountNFTs(ctx context.Context, chain, address string) ([]marketplace.NFT, error)
}

// App holds the handlers' dependencies.
type App struct {
	Minter    Minter
	Deployer  Deployer
	Attempts  storage.AttemptStore
	Dashboard Overviewer
	Gallery   Gallery

	// Chain names the marketplace chain for account NFT lookups.
	Chain     string
	MaxUpload int64
	Logger    zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// attemptResponse is the wire form of a mint attempt. Image bytes are
// never echoed back.
type attemptResponse struct {
	ID          string           `json:"id"`
	Account     string           `json:"account"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	State       string           `json:"state"`
	MediaURI    string           `json:"media_uri,omitempty"`
	MetadataURI string           `json:"metadata_uri,omitempty"`
	Tx          *txResponse      `json:"tx,omitempty"`
	Failure     *failureResponse `json:"failure,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at,omitempty"`
}

type txResponse struct {
	Hash        string `json:"hash"`
	Status      string `json:"status"`
	BlockNumber uint64 `json:"block_number,omitempty"`
}

type failureResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func toAttemptResponse(a *domain.Attempt) attemptResponse {
	resp := attemptResponse{
		ID:          a.ID,
		Account:     a.Account,
		Name:        a.Input.Name,
		Description: a.Input.Description,
		State:       string(a.State),
		MediaURI:    a.MediaURI,
		MetadataURI: a.MetadataURI,
		StartedAt:   a.StartedAt,
		FinishedAt:  a.FinishedAt,
	}
	if a.Tx != nil {
		resp.Tx = &txResponse{
			Hash:        a.Tx.Hash,
			Status:      string(a.Tx.Status),
			BlockNumber: a.Tx.BlockNumber,
		}
	}
	if a.Failure != nil {
		resp.Failure = &failureResponse{
			Reason:  string(a.Failure.Reason),
			Message: a.Failure.Message,
		}
	}
	return resp
}
