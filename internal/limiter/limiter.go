package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultWindow = time.Minute
	defaultMax    = 60
)

// FixedWindow is a per-client fixed-window rate limiter backed by Redis.
// Each client gets a counter that expires one window after its first hit;
// once the counter passes the maximum, further requests in that window are
// denied. Expiry resets the window.
type FixedWindow struct {
	client *redis.Client
	window time.Duration
	max    int64
}

// NewFixedWindow constructs a limiter with the autocomplete policy:
// 60 requests per 60-second window per client.
func NewFixedWindow(client *redis.Client) *FixedWindow {
	return &FixedWindow{client: client, window: defaultWindow, max: defaultMax}
}

// NewFixedWindowWithPolicy constructs a limiter with a custom window and
// maximum (for tests).
func NewFixedWindowWithPolicy(client *redis.Client, window time.Duration, max int64) *FixedWindow {
	return &FixedWindow{client: client, window: window, max: max}
}

func key(clientID string) string {
	return "ratelimit:" + clientID
}

// Allow records one request for the client and reports whether it fits in
// the current window.
func (l *FixedWindow) Allow(ctx context.Context, clientID string) (bool, error) {
	k := key(clientID)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr for client %s: %w", clientID, err)
	}

	if count == 1 {
		// First hit opens the window; expiry closes it.
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire for client %s: %w", clientID, err)
		}
	}

	return count <= l.max, nil
}
