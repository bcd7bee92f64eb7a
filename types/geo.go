package types

import "math"

// earthRadiusKm is the mean Earth radius used for great-circle math.
const earthRadiusKm = 6371.0

// LatLng is a geographical point in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the great-circle (haversine) distance to q in
// kilometers.
//
// At the radius scales this library works with (kilometers to low hundreds
// of kilometers) the haversine formula is accurate to well under a meter;
// no flat-earth approximation is used.
//
// Parameters:
//   - q: The other point
//
// Returns:
//   - float64: Distance in kilometers
func (p LatLng) DistanceKm(q LatLng) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := q.Lat * math.Pi / 180
	dLat := (q.Lat - p.Lat) * math.Pi / 180
	dLng := (q.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Midpoint returns the arithmetic midpoint between p and q.
//
// Good enough for room centroids at cluster scale; rooms never span
// anywhere near an antimeridian-sized area.
func (p LatLng) Midpoint(q LatLng) LatLng {
	return LatLng{
		Lat: (p.Lat + q.Lat) / 2,
		Lng: (p.Lng + q.Lng) / 2,
	}
}
