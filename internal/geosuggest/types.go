package geosuggest

import "errors"

// ErrRateLimited is returned when a client exceeds the autocomplete quota.
// No provider call is made once the quota is exhausted.
var ErrRateLimited = errors.New("rate limit exceeded")

// ErrUpstreamRateLimited marks a provider rejecting us with HTTP 429. It is
// only used to steer fallback and is never surfaced to the end caller.
var ErrUpstreamRateLimited = errors.New("upstream rate limited")

// ErrMissingAPIKey marks a provider that cannot be called because its key is
// not configured. Treated like any other provider failure so fallback can
// proceed.
var ErrMissingAPIKey = errors.New("missing API key")

// Suggestion is one autocomplete result: a human-readable label with its
// coordinates. Candidates missing the label or either coordinate are dropped
// before a Suggestion is ever built.
type Suggestion struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}
