package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowdine/lowdine/internal/api"
	"github.com/lowdine/lowdine/internal/finder"
	"github.com/lowdine/lowdine/internal/geosuggest"
)

// ---- mock implementations ----

type mockSuggest struct {
	suggestFn func(ctx context.Context, query, clientID string) ([]geosuggest.Suggestion, error)
}

func (m *mockSuggest) Suggest(ctx context.Context, query, clientID string) ([]geosuggest.Suggestion, error) {
	return m.suggestFn(ctx, query, clientID)
}

type mockFinder struct {
	findFn func(ctx context.Context, req finder.Request) (*finder.Result, error)
}

func (m *mockFinder) Find(ctx context.Context, req finder.Request) (*finder.Result, error) {
	return m.findFn(ctx, req)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ---- helpers ----

func buildRouter(suggest api.SuggestService, find api.RestaurantFinder, redis *mockPinger) http.Handler {
	if redis == nil {
		redis = &mockPinger{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(suggest, find, log)
	return api.NewRouter(handlers, redis, []string{"http://localhost:3000"}, log)
}

func sampleResult() *finder.Result {
	return &finder.Result{
		Origin: finder.Origin{Lat: 40.7128, Lon: -74.0060},
		Restaurants: []finder.Restaurant{
			{ID: 101, Name: "Joe's Cafe", Address: "Nearby", Cuisine: "coffee_shop", Distance: "0.0 miles", Lat: 40.7130, Lon: -74.0058},
		},
		RadiusMeters: 2500,
	}
}

// ---- GET /autocomplete ----

func TestAutocomplete_Success(t *testing.T) {
	suggest := &mockSuggest{suggestFn: func(_ context.Context, query, clientID string) ([]geosuggest.Suggestion, error) {
		assert.Equal(t, "main st", query)
		assert.NotEmpty(t, clientID)
		return []geosuggest.Suggestion{{Label: "123 Main St", Lat: 39.8, Lon: -89.6}}, nil
	}}

	router := buildRouter(suggest, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/autocomplete?q=main+st", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))

	var body struct {
		Suggestions []geosuggest.Suggestion `json:"suggestions"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Suggestions, 1)
	assert.Equal(t, "123 Main St", body.Suggestions[0].Label)
}

func TestAutocomplete_EmptyQuery(t *testing.T) {
	suggest := &mockSuggest{suggestFn: func(_ context.Context, _, _ string) ([]geosuggest.Suggestion, error) {
		return []geosuggest.Suggestion{}, nil
	}}

	router := buildRouter(suggest, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/autocomplete", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Cache-Control"), "empty queries are not marked cacheable")
	assert.JSONEq(t, `{"suggestions":[]}`, w.Body.String())
}

func TestAutocomplete_RateLimited(t *testing.T) {
	suggest := &mockSuggest{suggestFn: func(_ context.Context, _, _ string) ([]geosuggest.Suggestion, error) {
		return nil, geosuggest.ErrRateLimited
	}}

	router := buildRouter(suggest, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/autocomplete?q=main", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, w.Body.String())
}

func TestAutocomplete_UpstreamFailure(t *testing.T) {
	suggest := &mockSuggest{suggestFn: func(_ context.Context, _, _ string) ([]geosuggest.Suggestion, error) {
		return nil, fmt.Errorf("geoapify returned status 502")
	}}

	router := buildRouter(suggest, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/autocomplete?q=main", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body["error"], "geoapify")
}

// ---- POST /restaurants ----

func TestRestaurants_Success(t *testing.T) {
	find := &mockFinder{findFn: func(_ context.Context, req finder.Request) (*finder.Result, error) {
		require.NotNil(t, req.Coords)
		assert.Equal(t, 40.7128, req.Coords.Lat)
		assert.Equal(t, "coffee", req.Meal)
		assert.Equal(t, 2500, req.RadiusMeters)
		return sampleResult(), nil
	}}

	router := buildRouter(nil, find, nil)
	payload := `{"coords":{"lat":40.7128,"lon":-74.0060},"radiusMeters":2500,"meal":"coffee"}`
	req := httptest.NewRequest(http.MethodPost, "/restaurants", strings.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store, max-age=0", w.Header().Get("Cache-Control"))

	var body struct {
		Origin       finder.Origin       `json:"origin"`
		Restaurants  []finder.Restaurant `json:"restaurants"`
		RadiusMeters int                 `json:"radiusMeters"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 40.7128, body.Origin.Lat)
	require.Len(t, body.Restaurants, 1)
	assert.Equal(t, "Joe's Cafe", body.Restaurants[0].Name)
	assert.Equal(t, "0.0 miles", body.Restaurants[0].Distance)
	assert.Equal(t, 2500, body.RadiusMeters)
}

func TestRestaurants_MissingLocation(t *testing.T) {
	find := &mockFinder{findFn: func(_ context.Context, _ finder.Request) (*finder.Result, error) {
		return nil, finder.ErrMissingLocation
	}}

	router := buildRouter(nil, find, nil)
	req := httptest.NewRequest(http.MethodPost, "/restaurants", strings.NewReader(`{"meal":"dinner"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing location"}`, w.Body.String())
}

func TestRestaurants_LocationNotFound(t *testing.T) {
	find := &mockFinder{findFn: func(_ context.Context, _ finder.Request) (*finder.Result, error) {
		return nil, finder.ErrLocationNotFound
	}}

	router := buildRouter(nil, find, nil)
	req := httptest.NewRequest(http.MethodPost, "/restaurants", strings.NewReader(`{"queryText":"xyzzy"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Location not found"}`, w.Body.String())
}

func TestRestaurants_ServerError(t *testing.T) {
	find := &mockFinder{findFn: func(_ context.Context, _ finder.Request) (*finder.Result, error) {
		return nil, fmt.Errorf("something unexpected")
	}}

	router := buildRouter(nil, find, nil)
	req := httptest.NewRequest(http.MethodPost, "/restaurants", strings.NewReader(`{"queryText":"paris"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Server error"}`, w.Body.String(), "internal details are not leaked")
}

func TestRestaurants_MalformedBody(t *testing.T) {
	find := &mockFinder{findFn: func(_ context.Context, _ finder.Request) (*finder.Result, error) {
		t.Fatal("finder must not be called with an undecodable body")
		return nil, nil
	}}

	router := buildRouter(nil, find, nil)
	req := httptest.NewRequest(http.MethodPost, "/restaurants", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- GET /health ----

func TestHealth_OK(t *testing.T) {
	router := buildRouter(nil, nil, &mockPinger{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["redis"])
}

func TestHealth_RedisDown(t *testing.T) {
	router := buildRouter(nil, nil, &mockPinger{err: fmt.Errorf("redis unreachable")})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
}
