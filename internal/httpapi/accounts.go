package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"nft-minter/internal/ethereum"
)

// AccountOverview handles GET /api/accounts/{address}/overview.
func (a *App) AccountOverview(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !ethereum.IsHexAddress(address) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid account address")
		return
	}

	overview, err := a.Dashboard.Overview(r.Context(), address)
	if err != nil {
		a.Logger.Error().Err(err).Str("account", address).Msg("account overview")
		a.error(w, http.StatusBadGateway, "overview_failed", "could not assemble account overview")
		return
	}

	a.json(w, http.StatusOK, overview)
}
