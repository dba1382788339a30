package finder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowdine/lowdine/internal/finder"
)

func TestGeocodeClient_FirstResultOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"lat": "40.7128", "lon": "-74.0060", "display_name": "New York, NY, USA"},
		})
	}))
	defer srv.Close()

	c := finder.NewGeocodeClientWithURL(srv.URL)
	origin, err := c.Geocode(context.Background(), "new york")
	require.NoError(t, err)
	require.NotNil(t, origin)
	assert.Equal(t, 40.7128, origin.Lat)
	assert.Equal(t, -74.0060, origin.Lon)
	assert.Equal(t, "New York, NY, USA", origin.Label)
}

func TestGeocodeClient_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	c := finder.NewGeocodeClientWithURL(srv.URL)
	origin, err := c.Geocode(context.Background(), "xyzzy nowhere at all")
	require.NoError(t, err)
	assert.Nil(t, origin, "no match is nil, nil — the finder maps it to not-found")
}

func TestGeocodeClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := finder.NewGeocodeClientWithURL(srv.URL)
	_, err := c.Geocode(context.Background(), "paris")
	require.Error(t, err)
}

func TestGeocodeClient_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"lat": "forty", "lon": "-74.0060", "display_name": "Broken"},
		})
	}))
	defer srv.Close()

	c := finder.NewGeocodeClientWithURL(srv.URL)
	_, err := c.Geocode(context.Background(), "new york")
	require.Error(t, err)
}
