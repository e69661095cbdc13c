package domain

import "math"

// Mean Earth radius in kilometers used by the route scoring model.
const earthRadiusKm = 6371.0

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between a and b in kilometers
// using the haversine formula. Symmetric, zero for identical points.
func Distance(a, b Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
