package finder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const mirrorTimeout = 12 * time.Second

// defaultMirrors are equivalent Overpass endpoints, tried in order.
var defaultMirrors = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://overpass.openstreetmap.ru/api/interpreter",
}

// OverpassClient queries an Overpass POI service through a prioritized list
// of mirror endpoints.
type OverpassClient struct {
	mirrors []string
	client  *http.Client
	log     *slog.Logger
}

// NewOverpassClient constructs an OverpassClient over the default mirrors.
func NewOverpassClient(log *slog.Logger) *OverpassClient {
	return NewOverpassClientWithMirrors(defaultMirrors, log)
}

// NewOverpassClientWithMirrors constructs an OverpassClient over custom
// endpoints (for tests, or an OVERPASS_MIRRORS override).
func NewOverpassClientWithMirrors(mirrors []string, log *slog.Logger) *OverpassClient {
	return &OverpassClient{
		mirrors: mirrors,
		client:  &http.Client{Timeout: mirrorTimeout},
		log:     log,
	}
}

type overpassElement struct {
	Type   string  `json:"type"`
	ID     int64   `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// buildQuery renders the Overpass QL statement for one search attempt.
func buildQuery(origin Origin, radiusMeters int, filter MealFilter) string {
	var constraints strings.Builder
	fmt.Fprintf(&constraints, `["amenity"~"^(%s)$"]`, strings.Join(filter.Amenities, "|"))
	if filter.IncludeCuisine != "" {
		fmt.Fprintf(&constraints, ` ["cuisine"~"(%s)", i]`, filter.IncludeCuisine)
	}
	if filter.ExcludeCuisine != "" {
		fmt.Fprintf(&constraints, ` ["cuisine"!~"(%s)", i]`, filter.ExcludeCuisine)
	}
	if filter.ExcludeName != "" {
		fmt.Fprintf(&constraints, ` ["name"!~"(%s)", i]`, filter.ExcludeName)
	}
	if filter.Diet == "vegan" || filter.Diet == "vegetarian" {
		fmt.Fprintf(&constraints, ` ["diet:%s"="yes"]`, filter.Diet)
	}

	around := fmt.Sprintf("(around:%d,%f,%f)", radiusMeters, origin.Lat, origin.Lon)
	common := constraints.String()

	return fmt.Sprintf(`[out:json][timeout:30];
(
  node%[1]s%[2]s;
  way%[1]s%[2]s;
  relation%[1]s%[2]s;
);
out center tags 80;`, common, around)
}

// Query runs one POI search at the given radius. Mirrors are tried
// sequentially; the first usable response wins. When every mirror fails the
// result is zero candidates, not an error — radius escalation decides what
// happens next.
func (c *OverpassClient) Query(ctx context.Context, origin Origin, radiusMeters int, filter MealFilter) ([]Venue, error) {
	body := url.Values{"data": {buildQuery(origin, radiusMeters, filter)}}.Encode()

	var data *overpassResponse
	for _, mirror := range c.mirrors {
		resp, err := c.post(ctx, mirror, body)
		if err != nil {
			c.log.Warn("overpass mirror failed", "mirror", mirror, "err", err)
			continue
		}
		data = resp
		break
	}
	if data == nil {
		c.log.Warn("all overpass mirrors failed", "radius_m", radiusMeters)
		return nil, nil
	}

	venues := make([]Venue, 0, len(data.Elements))
	for _, el := range data.Elements {
		v, ok := normalizeElement(el)
		if !ok {
			continue
		}
		venues = append(venues, v)
	}
	return venues, nil
}

func (c *OverpassClient) post(ctx context.Context, endpoint, body string) (*overpassResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", finderUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("POST %s returned status %d", endpoint, resp.StatusCode)
	}

	var data overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}
	return &data, nil
}

// normalizeElement converts a raw Overpass element to a Venue. Nodes carry
// their own coordinates; ways and relations use their center point.
// Elements without coordinates are dropped.
func normalizeElement(el overpassElement) (Venue, bool) {
	lat, lon := el.Lat, el.Lon
	if el.Type != "node" {
		if el.Center == nil {
			return Venue{}, false
		}
		lat, lon = el.Center.Lat, el.Center.Lon
	}
	if lat == 0 && lon == 0 {
		return Venue{}, false
	}

	name := el.Tags["name"]
	if name == "" {
		name = "Unnamed Restaurant"
	}

	var parts []string
	for _, key := range []string{"addr:housenumber", "addr:street", "addr:city"} {
		if v := el.Tags[key]; v != "" {
			parts = append(parts, v)
		}
	}

	cuisine := el.Tags["cuisine"]
	if cuisine == "" {
		cuisine = "Various"
	}

	return Venue{
		ID:      el.ID,
		Name:    name,
		Address: strings.Join(parts, " "),
		Cuisine: cuisine,
		Amenity: el.Tags["amenity"],
		Lat:     lat,
		Lon:     lon,
	}, true
}
