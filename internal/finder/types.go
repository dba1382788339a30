package finder

import "errors"

// ErrMissingLocation is returned when a request carries neither coordinates
// nor query text. No network call is made in that case.
var ErrMissingLocation = errors.New("missing location")

// ErrLocationNotFound is returned when free-text geocoding yields no match.
var ErrLocationNotFound = errors.New("location not found")

// Coords is an explicit latitude/longitude pair supplied by the caller
// (device geolocation or a chosen autocomplete suggestion).
type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Origin is the resolved point a search is centered on.
type Origin struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label,omitempty"`
}

// Venue is a raw point-of-interest record as normalized from the POI service.
type Venue struct {
	ID      int64
	Name    string
	Address string
	Cuisine string
	Amenity string
	Lat     float64
	Lon     float64
}

// Restaurant is a ranked output entry with its distance from the origin.
type Restaurant struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Cuisine  string  `json:"cuisine"`
	Amenity  string  `json:"amenity,omitempty"`
	Distance string  `json:"distance"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Request describes one restaurant search. Coords takes precedence over
// QueryText when both are present.
type Request struct {
	QueryText    string
	Coords       *Coords
	RadiusMeters int
	Meal         string
}

// Result is a completed search: the origin it was centered on, the venues
// found, and the radius that actually produced them (the requested radius,
// or a wider ladder rung if escalation was needed).
type Result struct {
	Origin       Origin       `json:"origin"`
	Restaurants  []Restaurant `json:"restaurants"`
	RadiusMeters int          `json:"radiusMeters"`
}
