package vdm

import "math"

const earthRadiusKm = 6371

type Coordinate struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// DistanceKm returns the haversine great-circle distance between two points.
func (c Coordinate) DistanceKm(other Coordinate) float64 {
	dLat := (other.Latitude - c.Latitude) * math.Pi / 180
	dLon := (other.Longitude - c.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(c.Latitude*math.Pi/180)*math.Cos(other.Latitude*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	angle := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * angle
}

// BearingTo returns the initial great-circle bearing from this point towards
// other, in degrees clockwise from north in [0, 360).
func (c Coordinate) BearingTo(other Coordinate) float64 {
	dLon := (other.Longitude - c.Longitude) * math.Pi / 180
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
}

// Interpolate returns the point a fraction of the way along the straight line
// towards other. Fraction is clamped to [0, 1].
func (c Coordinate) Interpolate(other Coordinate, fraction float64) Coordinate {
	fraction = math.Max(0, math.Min(1, fraction))

	return Coordinate{
		Latitude:  c.Latitude + (other.Latitude-c.Latitude)*fraction,
		Longitude: c.Longitude + (other.Longitude-c.Longitude)*fraction,
	}
}
