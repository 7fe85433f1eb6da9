package server

import (
	"net/http"

	"github.com/relaydesk/relaydesk/internal/api/handlers"
	"github.com/relaydesk/relaydesk/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	AuthValidator middleware.AuthValidator // nil disables authentication
	QueryHandler  *handlers.QueryHandler
	KBHandler     *handlers.KBHandler
	TopicsHandler *handlers.TopicsHandler
	HealthHandler *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)

	r.Group(func(r chi.Router) {
		if cfg.AuthValidator != nil {
			r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		}

		r.Post("/query", cfg.QueryHandler.Query)

		r.Route("/kb/{tier}", func(r chi.Router) {
			r.Get("/", cfg.KBHandler.List)
			r.Get("/stats", cfg.KBHandler.Stats)
			r.Post("/match", cfg.KBHandler.Match)
		})

		r.Route("/topics", func(r chi.Router) {
			r.Get("/", cfg.TopicsHandler.List)
			r.Post("/classify", cfg.TopicsHandler.Classify)
		})
	})

	return r
}
