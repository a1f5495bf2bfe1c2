package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nft-minter/internal/ethereum"
	"nft-minter/internal/marketplace"
)

// GalleryCollections handles GET /api/gallery/collections.
func (a *App) GalleryCollections(w http.ResponseWriter, r *http.Request) {
	limit := marketplace.DefaultCollectionsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	collections, err := a.Gallery.Collections(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("gallery collections")
		a.error(w, http.StatusBadGateway, "gallery_failed", "could not fetch collections")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"collections": collections})
}

// AccountNFTs handles GET /api/accounts/{address}/nfts.
func (a *App) AccountNFTs(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !ethereum.IsHexAddress(address) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid account address")
		return
	}

	chain := a.Chain
	if chain == "" {
		chain = "ethereum"
	}

	nfts, err := a.Gallery.AccountNFTs(r.Context(), chain, address)
	if err != nil {
		a.Logger.Error().Err(err).Str("account", address).Msg("account nfts")
		a.error(w, http.StatusBadGateway, "gallery_failed", "could not fetch account NFTs")
		return
	}

	a.json(w, http.StatusOK, map[string]any{"nfts": nfts})
}
