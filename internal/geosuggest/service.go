package geosuggest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Provider fetches autocomplete suggestions from one upstream geocoder.
type Provider interface {
	Fetch(ctx context.Context, query string) ([]Suggestion, error)
}

// SuggestionCache stores suggestion lists by normalized query. Get returns
// nil, nil on a miss or an expired entry.
type SuggestionCache interface {
	Get(ctx context.Context, query string) ([]Suggestion, error)
	Set(ctx context.Context, query string, suggestions []Suggestion) error
}

// RateLimiter answers whether a client may make another request right now.
type RateLimiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}

// Service resolves partial address text into labeled coordinates, shielding
// the primary provider behind a cache, a per-client quota, and a fallback
// provider.
type Service struct {
	primary  Provider
	fallback Provider
	cache    SuggestionCache
	limiter  RateLimiter
	log      *slog.Logger
}

// NewService constructs a Service. The primary provider is tried first on
// every cache miss; the fallback takes over per the classification rules in
// Suggest.
func NewService(primary, fallback Provider, cache SuggestionCache, limiter RateLimiter, log *slog.Logger) *Service {
	return &Service{
		primary:  primary,
		fallback: fallback,
		cache:    cache,
		limiter:  limiter,
		log:      log,
	}
}

// Suggest returns autocomplete suggestions for the query text.
//
// Empty queries short-circuit to an empty list. The per-client quota is
// checked before any network call; an exhausted quota returns ErrRateLimited.
// Cache hits skip the providers entirely. Otherwise the primary provider is
// tried, and on failure classified: an upstream 429 hands the request to the
// fallback outright (its result or error is final), any other failure tries
// the fallback best-effort and, if that also fails, propagates the original
// primary error.
func (s *Service) Suggest(ctx context.Context, query, clientID string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Suggestion{}, nil
	}

	allowed, err := s.limiter.Allow(ctx, clientID)
	if err != nil {
		// Fail open: limiter infrastructure trouble should not take
		// autocomplete down with it.
		s.log.Warn("rate limiter check failed", "client", clientID, "err", err)
	} else if !allowed {
		return nil, ErrRateLimited
	}

	if cached, err := s.cache.Get(ctx, query); err != nil {
		s.log.Warn("suggestion cache get failed", "query", query, "err", err)
	} else if cached != nil {
		return cached, nil
	}

	suggestions, err := s.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, query, suggestions); err != nil {
		s.log.Warn("suggestion cache set failed", "query", query, "err", err)
	}
	return suggestions, nil
}

// fetch runs the primary→fallback provider chain for one query.
func (s *Service) fetch(ctx context.Context, query string) ([]Suggestion, error) {
	suggestions, primaryErr := s.primary.Fetch(ctx, query)
	if primaryErr == nil {
		return suggestions, nil
	}

	if errors.Is(primaryErr, ErrUpstreamRateLimited) {
		// The primary told us to back off; whatever the fallback says is
		// the final answer.
		s.log.Warn("primary provider rate limited, switching", "query", query)
		return s.fallback.Fetch(ctx, query)
	}

	s.log.Warn("primary provider failed, trying fallback", "query", query, "err", primaryErr)
	suggestions, fallbackErr := s.fallback.Fetch(ctx, query)
	if fallbackErr != nil {
		s.log.Warn("fallback provider also failed", "query", query, "err", fallbackErr)
		return nil, primaryErr
	}
	return suggestions, nil
}
