package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nft-minter/internal/domain"
	"nft-minter/internal/storage"
)

const defaultAttemptsLimit = 50

// GetAttempt handles GET /api/attempts/{id}.
func (a *App) GetAttempt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	attempt, err := a.Attempts.GetByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "no such attempt")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("attempt", id).Msg("get attempt")
		a.error(w, http.StatusInternalServerError, "internal", "attempt lookup failed")
		return
	}

	a.json(w, http.StatusOK, toAttemptResponse(attempt))
}

// ListAttempts handles GET /api/attempts. An account query parameter
// narrows the listing; limit caps it.
func (a *App) ListAttempts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAttemptsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	var attempts []*domain.Attempt
	var err error
	if account := r.URL.Query().Get("account"); account != "" {
		attempts, err = a.Attempts.GetByAccount(r.Context(), account)
		if err == nil && len(attempts) > limit {
			attempts = attempts[:limit]
		}
	} else {
		attempts, err = a.Attempts.List(r.Context(), limit)
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("list attempts")
		a.error(w, http.StatusInternalServerError, "internal", "attempt listing failed")
		return
	}

	out := make([]attemptResponse, 0, len(attempts))
	for _, at := range attempts {
		out = append(out, toAttemptResponse(at))
	}
	a.json(w, http.StatusOK, map[string]any{"attempts": out})
}
