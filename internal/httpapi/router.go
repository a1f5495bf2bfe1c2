package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nft-minter/internal/observability"
)

// NewRouter wires the application routes.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/health", app.Health)
	r.Method(http.MethodGet, "/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/mint", app.SubmitMint)
		r.Post("/deploy", app.DeployContract)

		r.Route("/attempts", func(r chi.Router) {
			r.Get("/", app.ListAttempts)
			r.Get("/{id}", app.GetAttempt)
		})

		r.Get("/accounts/{address}/overview", app.AccountOverview)
		r.Get("/accounts/{address}/nfts", app.AccountNFTs)
		r.Get("/gallery/collections", app.GalleryCollections)
	})

	return r
}
