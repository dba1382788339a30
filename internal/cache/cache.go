package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lowdine/lowdine/internal/geosuggest"
)

// defaultTTL is the freshness window for an autocomplete response. Entries
// older than this are treated as absent.
const defaultTTL = 5 * time.Minute

// SuggestionCache stores autocomplete results in Redis, keyed by normalized
// query text.
type SuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSuggestionCache constructs a SuggestionCache with the 5-minute window.
func NewSuggestionCache(client *redis.Client) *SuggestionCache {
	return &SuggestionCache{client: client, ttl: defaultTTL}
}

// key returns the Redis key for the given query text. Queries differing only
// in case or surrounding whitespace share an entry.
func key(query string) string {
	return "autocomplete:" + strings.ToLower(strings.TrimSpace(query))
}

// Get retrieves cached suggestions for the query.
// Returns nil, nil on a cache miss (not an error).
func (c *SuggestionCache) Get(ctx context.Context, query string) ([]geosuggest.Suggestion, error) {
	val, err := c.client.Get(ctx, key(query)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for query %q: %w", query, err)
	}

	var suggestions []geosuggest.Suggestion
	if err := json.Unmarshal([]byte(val), &suggestions); err != nil {
		return nil, fmt.Errorf("unmarshaling cached suggestions for query %q: %w", query, err)
	}
	if suggestions == nil {
		suggestions = []geosuggest.Suggestion{}
	}

	return suggestions, nil
}

// Set stores suggestions for the query with the configured TTL. A nil slice
// is stored as an empty list so negative results are cached too.
func (c *SuggestionCache) Set(ctx context.Context, query string, suggestions []geosuggest.Suggestion) error {
	if suggestions == nil {
		suggestions = []geosuggest.Suggestion{}
	}

	b, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("marshaling suggestions for query %q: %w", query, err)
	}

	if err := c.client.Set(ctx, key(query), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set for query %q: %w", query, err)
	}

	return nil
}
