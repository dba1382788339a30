package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
)

// NewRouter builds and returns the chi router with all routes configured.
// The router-level limit is a coarse per-IP guard; GeoSuggest applies its own
// 60/min quota inside the service, so the guard sits above that threshold to
// never preempt it. allowedOrigins feeds CORS for the browser UI.
func NewRouter(handlers *Handlers, redisClient redisPinger, allowedOrigins []string, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httprate.LimitByIP(120, time.Minute))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	r.Get("/health", HealthHandlerFunc(redisClient, log))
	r.Get("/autocomplete", handlers.Autocomplete)
	r.Post("/restaurants", handlers.Restaurants)

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
