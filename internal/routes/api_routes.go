package routes

import (
	"apexparts/catalogd/internal/api"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/imports", func(imports chi.Router) {
			imports.Post("/diff", api.DiffImportHandler(deps))
			imports.Get("/history", api.ImportHistoryHandler(deps))

			imports.Route("/review/{reviewID}", func(review chi.Router) {
				review.Get("/", api.ReviewStatusHandler(deps))
				review.Post("/apply", api.ApplyImportHandler(deps))
			})

			imports.Post("/{importID}/rollback", api.RollbackImportHandler(deps))
		})

		v1.Route("/catalog", func(catalog chi.Router) {
			catalog.Get("/export", api.ExportCatalogHandler(deps))
			catalog.Post("/export/link", api.ExportLinkHandler(deps))
		})
	})
}
