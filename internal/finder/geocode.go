package finder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	geocodeTimeout    = 10 * time.Second
	nominatimDefault  = "https://nominatim.openstreetmap.org/search"
	finderUserAgent   = "Lowdine/1.0 (contact: hello@lowdine.app)"
	geocodeResultCap  = "1"
	geocodeJSONFormat = "json"
)

// GeocodeClient resolves free-text locations against a Nominatim-compatible
// search endpoint. Only the first match is used.
type GeocodeClient struct {
	baseURL string
	client  *http.Client
}

// NewGeocodeClient constructs a GeocodeClient against the production endpoint.
func NewGeocodeClient() *GeocodeClient {
	return NewGeocodeClientWithURL(nominatimDefault)
}

// NewGeocodeClientWithURL constructs a GeocodeClient pointing at a custom
// base URL (for tests).
func NewGeocodeClientWithURL(baseURL string) *GeocodeClient {
	return &GeocodeClient{baseURL: baseURL, client: &http.Client{Timeout: geocodeTimeout}}
}

type nominatimEntry struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves text to an Origin. Returns nil, nil when the service has
// no match for the text.
func (c *GeocodeClient) Geocode(ctx context.Context, text string) (*Origin, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("format", geocodeJSONFormat)
	q.Set("limit", geocodeResultCap)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating geocode request: %w", err)
	}
	req.Header.Set("User-Agent", finderUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", text, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding %q returned status %d", text, resp.StatusCode)
	}

	var entries []nominatimEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding geocode response for %q: %w", text, err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(entries[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing geocode latitude %q: %w", entries[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(entries[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing geocode longitude %q: %w", entries[0].Lon, err)
	}

	return &Origin{Lat: lat, Lon: lon, Label: entries[0].DisplayName}, nil
}
