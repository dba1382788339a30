package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lowdine/lowdine/internal/finder"
	"github.com/lowdine/lowdine/internal/geosuggest"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	suggest SuggestService
	finder  RestaurantFinder
	log     *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(suggest SuggestService, finder RestaurantFinder, log *slog.Logger) *Handlers {
	return &Handlers{suggest: suggest, finder: finder, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientIP extracts the client identifier for rate limiting. RealIP
// middleware has already resolved forwarding headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "anon"
	}
	return host
}

type suggestionsResponse struct {
	Suggestions []geosuggest.Suggestion `json:"suggestions"`
}

// Autocomplete handles GET /autocomplete?q=<text>.
// Empty queries yield an empty list; successful lookups are marked publicly
// cacheable for a short browser-level window.
func (h *Handlers) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	suggestions, err := h.suggest.Suggest(r.Context(), query, clientIP(r))
	if err != nil {
		if errors.Is(err, geosuggest.ErrRateLimited) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Rate limit exceeded"})
			return
		}
		h.log.Error("autocomplete failed", "query", query, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if strings.TrimSpace(query) != "" {
		w.Header().Set("Cache-Control", "public, max-age=60")
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}

type restaurantsRequest struct {
	QueryText    string         `json:"queryText"`
	Coords       *finder.Coords `json:"coords"`
	RadiusMeters int            `json:"radiusMeters"`
	Meal         string         `json:"meal"`
}

// Restaurants handles POST /restaurants.
// Responses are never cacheable: the same body can legitimately produce a
// different venue list minutes later.
func (h *Handlers) Restaurants(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, max-age=0")

	var body restaurantsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	result, err := h.finder.Find(r.Context(), finder.Request{
		QueryText:    body.QueryText,
		Coords:       body.Coords,
		RadiusMeters: body.RadiusMeters,
		Meal:         body.Meal,
	})
	if err != nil {
		switch {
		case errors.Is(err, finder.ErrMissingLocation):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing location"})
		case errors.Is(err, finder.ErrLocationNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Location not found"})
		default:
			h.log.Error("restaurant search failed", "meal", body.Meal, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// redisPinger is satisfied by the Redis client backing cache and limiter.
type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks Redis
// connectivity; 200 when reachable, 503 otherwise.
func HealthHandlerFunc(redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": "error"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "redis": "ok"})
	}
}
