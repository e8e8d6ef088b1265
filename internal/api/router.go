// Package api assembles the HTTP surface of the Strata backend.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/api/handlers"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/api/middleware"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Identity)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Forwarded-Email", "X-Forwarded-Access-Token", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/version", h.VersionInfo)

	r.Route("/api", func(r chi.Router) {
		r.Route("/domains", func(r chi.Router) {
			r.Get("/", h.ListDomains)
			r.Post("/", h.CreateDomain)
			r.Put("/{id}", h.UpdateDomain)
			r.Delete("/{id}", h.DeleteDomain)
		})

		r.Get("/sites", h.ListSites)

		r.Route("/endpoints", func(r chi.Router) {
			r.Get("/", h.ListEndpoints)
			r.Post("/", h.CreateEndpoint)
			r.Post("/refresh", h.RefreshEndpoints)
			r.Put("/{id}", h.UpdateEndpoint)
			r.Delete("/{id}", h.DeleteEndpoint)
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", h.ListConversations)
			r.Get("/{id}", h.GetConversation)
			r.Delete("/{id}", h.DeleteConversation)
		})

		r.Post("/chat", h.Chat)

		r.Get("/config", h.GetConfig)
		r.Post("/config", h.SetConfig)
	})

	return r
}
