package finder

import (
	"fmt"
	"math"
)

const earthRadiusMiles = 3958.8

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineMiles returns the great-circle distance in miles between two
// coordinate pairs.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// FormatMiles renders a distance as shown to the user, e.g. "0.3 miles".
func FormatMiles(miles float64) string {
	return fmt.Sprintf("%.1f miles", miles)
}
