package finder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const defaultRadiusMeters = 2000

// radiusLadder is the ordered set of search radii (meters) walked upward
// when a narrower search comes back empty: roughly 1.5, 3, 6, 10, 15 miles.
var radiusLadder = []int{2500, 5000, 10000, 16093, 24140}

// Geocoder resolves free text to an Origin. A nil Origin with a nil error
// means the text matched nothing.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (*Origin, error)
}

// VenueSource runs one POI query at a fixed radius.
type VenueSource interface {
	Query(ctx context.Context, origin Origin, radiusMeters int, filter MealFilter) ([]Venue, error)
}

// Finder resolves a location and produces a ranked list of nearby venues,
// widening the search radius until something turns up.
type Finder struct {
	geocoder Geocoder
	venues   VenueSource
	log      *slog.Logger
}

// NewFinder constructs a Finder with production clients.
func NewFinder(log *slog.Logger) *Finder {
	return NewFinderWithClients(NewGeocodeClient(), NewOverpassClient(log), log)
}

// NewFinderWithClients constructs a Finder with injectable clients (used in
// tests).
func NewFinderWithClients(g Geocoder, v VenueSource, log *slog.Logger) *Finder {
	return &Finder{geocoder: g, venues: v, log: log}
}

// Find resolves the request's origin, then runs the query/filter/rank
// pipeline, escalating through the radius ladder on empty results. An empty
// restaurant list after the ladder is exhausted is a valid outcome, not an
// error.
func (f *Finder) Find(ctx context.Context, req Request) (*Result, error) {
	origin, err := f.resolveOrigin(ctx, req)
	if err != nil {
		return nil, err
	}

	filter := FilterForMeal(req.Meal)

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = defaultRadiusMeters
	}

	for {
		restaurants, err := f.attempt(ctx, *origin, radius, filter)
		if err != nil {
			return nil, err
		}
		if len(restaurants) > 0 {
			return &Result{Origin: *origin, Restaurants: restaurants, RadiusMeters: radius}, nil
		}

		next, ok := nextRadius(radius)
		if !ok {
			return &Result{Origin: *origin, Restaurants: []Restaurant{}, RadiusMeters: radius}, nil
		}
		f.log.Info("escalating search radius", "from_m", radius, "to_m", next, "meal", req.Meal)
		radius = next
	}
}

// resolveOrigin prefers explicit coordinates; falls back to geocoding the
// query text. Neither present is the caller's fault.
func (f *Finder) resolveOrigin(ctx context.Context, req Request) (*Origin, error) {
	if req.Coords != nil {
		return &Origin{Lat: req.Coords.Lat, Lon: req.Coords.Lon}, nil
	}

	text := strings.TrimSpace(req.QueryText)
	if text == "" {
		return nil, ErrMissingLocation
	}

	origin, err := f.geocoder.Geocode(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("resolving origin for %q: %w", text, err)
	}
	if origin == nil {
		return nil, ErrLocationNotFound
	}
	return origin, nil
}

// attempt runs one query at one radius and post-filters the candidates.
func (f *Finder) attempt(ctx context.Context, origin Origin, radiusMeters int, filter MealFilter) ([]Restaurant, error) {
	venues, err := f.venues.Query(ctx, origin, radiusMeters, filter)
	if err != nil {
		return nil, fmt.Errorf("querying venues at %dm: %w", radiusMeters, err)
	}

	restaurants := make([]Restaurant, 0, len(venues))
	for _, v := range venues {
		name := strings.TrimSpace(v.Name)
		if name == "" || strings.HasPrefix(strings.ToLower(name), "unnamed") {
			continue
		}
		if filter.Excludes(v.Name, v.Cuisine) {
			continue
		}

		address := v.Address
		if address == "" {
			address = "Nearby"
		}

		miles := HaversineMiles(origin.Lat, origin.Lon, v.Lat, v.Lon)
		restaurants = append(restaurants, Restaurant{
			ID:       v.ID,
			Name:     v.Name,
			Address:  address,
			Cuisine:  v.Cuisine,
			Amenity:  v.Amenity,
			Distance: FormatMiles(miles),
			Lat:      v.Lat,
			Lon:      v.Lon,
		})
	}
	return restaurants, nil
}

// nextRadius returns the smallest ladder rung strictly greater than the
// given radius, so escalation never revisits or shrinks a search area.
func nextRadius(radiusMeters int) (int, bool) {
	for _, r := range radiusLadder {
		if r > radiusMeters {
			return r, true
		}
	}
	return 0, false
}
