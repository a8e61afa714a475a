package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Distance returns the great-circle distance between a and b in kilometers.
// Coordinates are not range-checked.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Round2 rounds x to 2 decimal places
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// CacheKey identifies coordinates at 4 decimal places (~11 m)
func CacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
