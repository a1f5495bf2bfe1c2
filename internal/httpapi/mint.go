package httpapi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"strings"

	"nft-minter/internal/domain"
	"nft-minter/internal/mint"
)

func domainInput(r *http.Request, image []byte, contentType string) domain.MintInput {
	return domain.MintInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Image:       image,
		ContentType: contentType,
	}
}

// DefaultMaxUpload bounds the multipart form when the App does not set
// its own limit.
const DefaultMaxUpload = 25 << 20

// SubmitMint handles POST /api/mint. The request is a multipart form
// with name, description and a file part. The attempt always runs to a
// terminal state; its outcome travels in the body, not the status code.
func (a *App) SubmitMint(w http.ResponseWriter, r *http.Request) {
	maxUpload := a.MaxUpload
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file part required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable file part")
		return
	}

	input := domainInput(r, image, header.Header.Get("Content-Type"))
	attempt, err := a.Minter.Submit(r.Context(), input)
	switch {
	case errors.Is(err, mint.ErrAttemptInFlight):
		a.error(w, http.StatusConflict, "attempt_in_flight", err.Error())
		return
	case errors.Is(err, mint.ErrNoAccount):
		a.error(w, http.StatusBadRequest, "no_account", err.Error())
		return
	case err != nil:
		a.Logger.Error().Err(err).Msg("submit mint")
		a.error(w, http.StatusInternalServerError, "internal", "mint submission failed")
		return
	}

	a.json(w, http.StatusOK, toAttemptResponse(attempt))
}

type deployRequest struct {
	Bytecode string `json:"bytecode"`
	ValueWei string `json:"value_wei"`
}

// DeployContract handles POST /api/deploy with hex contract bytecode.
func (a *App) DeployContract(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	bytecode, err := hex.DecodeString(strings.TrimPrefix(req.Bytecode, "0x"))
	if err != nil || len(bytecode) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "bytecode must be non-empty hex")
		return
	}

	value := new(big.Int)
	if req.ValueWei != "" {
		if _, ok := value.SetString(req.ValueWei, 10); !ok {
			a.error(w, http.StatusBadRequest, "bad_request", "value_wei must be a decimal string")
			return
		}
	}

	address, handle, err := a.Deployer.Deploy(r.Context(), bytecode, value)
	if err != nil {
		a.Logger.Error().Err(err).Msg("deploy contract")
		a.error(w, http.StatusBadGateway, "deploy_failed", err.Error())
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"address": address,
		"tx_hash": handle.Hash,
		"status":  string(handle.Status),
	})
}
