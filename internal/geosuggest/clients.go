package geosuggest

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
	suggestionLimit = 7
	httpTimeout     = 10 * time.Second
)

// newHTTPClient returns an http.Client with the provider call timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// ---- Geoapify (primary) ----

// GeoapifyClient calls the Geoapify structured autocomplete endpoint.
type GeoapifyClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

const geoapifyDefaultURL = "https://api.geoapify.com/v1/geocode/autocomplete"

// NewGeoapifyClient constructs a GeoapifyClient with the given API key. An
// empty key is allowed; calls will fail with ErrMissingAPIKey.
func NewGeoapifyClient(apiKey string) *GeoapifyClient {
	return NewGeoapifyClientWithURL(geoapifyDefaultURL, apiKey)
}

// NewGeoapifyClientWithURL constructs a GeoapifyClient pointing at a custom
// base URL (for tests).
func NewGeoapifyClientWithURL(baseURL, apiKey string) *GeoapifyClient {
	return &GeoapifyClient{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient()}
}

type geoapifyItem struct {
	Formatted    string   `json:"formatted"`
	AddressLine1 string   `json:"address_line1"`
	AddressLine2 string   `json:"address_line2"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
}

type geoapifyResponse struct {
	Results []geoapifyItem `json:"results"`
}

// Fetch retrieves autocomplete suggestions for the query. A 429 from the
// provider is reported as ErrUpstreamRateLimited so the service can switch
// providers.
func (c *GeoapifyClient) Fetch(ctx context.Context, query string) ([]Suggestion, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("geoapify: %w", ErrMissingAPIKey)
	}

	endpoint := fmt.Sprintf("%s?text=%s&limit=%d&format=json&apiKey=%s",
		c.baseURL, url.QueryEscape(query), suggestionLimit, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating geoapify request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoapify autocomplete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("geoapify: %w", ErrUpstreamRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geoapify returned status %d", resp.StatusCode)
	}

	var raw geoapifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding geoapify response: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(raw.Results))
	for _, it := range raw.Results {
		label := it.Formatted
		if label == "" && it.AddressLine1 != "" {
			label = it.AddressLine1
			if it.AddressLine2 != "" {
				label += ", " + it.AddressLine2
			}
		}
		if label == "" || it.Lat == nil || it.Lon == nil {
			continue
		}
		suggestions = append(suggestions, Suggestion{Label: label, Lat: *it.Lat, Lon: *it.Lon})
	}
	return suggestions, nil
}

// ---- LocationIQ (fallback) ----

// LocationIQClient calls the LocationIQ autocomplete endpoint.
type LocationIQClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

const locationIQDefaultURL = "https://us1.locationiq.com/v1/autocomplete"

// NewLocationIQClient constructs a LocationIQClient with the given API key.
func NewLocationIQClient(apiKey string) *LocationIQClient {
	return NewLocationIQClientWithURL(locationIQDefaultURL, apiKey)
}

// NewLocationIQClientWithURL constructs a LocationIQClient pointing at a
// custom base URL (for tests).
func NewLocationIQClientWithURL(baseURL, apiKey string) *LocationIQClient {
	return &LocationIQClient{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient()}
}

type locationIQItem struct {
	DisplayPlace   string `json:"display_place"`
	DisplayAddress string `json:"display_address"`
	DisplayName    string `json:"display_name"`
	Lat            string `json:"lat"`
	Lon            string `json:"lon"`
}

// Fetch retrieves autocomplete suggestions for the query.
func (c *LocationIQClient) Fetch(ctx context.Context, query string) ([]Suggestion, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("locationiq: %w", ErrMissingAPIKey)
	}

	endpoint := fmt.Sprintf("%s?key=%s&q=%s&limit=%d&tag=place,address",
		c.baseURL, c.apiKey, url.QueryEscape(query), suggestionLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating locationiq request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("locationiq autocomplete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("locationiq returned status %d", resp.StatusCode)
	}

	var raw []locationIQItem
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding locationiq response: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(raw))
	for _, it := range raw {
		label := it.DisplayName
		if it.DisplayPlace != "" {
			label = it.DisplayPlace + ", " + it.DisplayAddress
		}
		if label == "" || it.Lat == "" || it.Lon == "" {
			continue
		}
		lat, latErr := strconv.ParseFloat(it.Lat, 64)
		lon, lonErr := strconv.ParseFloat(it.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		suggestions = append(suggestions, Suggestion{Label: label, Lat: lat, Lon: lon})
	}
	return suggestions, nil
}
