/*
server.go - HTTP router and middleware configuration

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: One zerolog line per request
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for the frontend

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/maintenance-engine/logging"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", h.QueryDue)

		r.Route("/logs", func(r chi.Router) {
			r.Get("/", h.ListLogs)
			r.Post("/", h.SubmitLog)
			r.Delete("/{id}", h.DeleteLog)
		})

		r.Route("/vehicle", func(r chi.Router) {
			r.Get("/", h.GetVehicle)
			r.Delete("/", h.ResetVehicle)
		})

		r.Get("/rules", h.ListRules)
	})

	return r
}
