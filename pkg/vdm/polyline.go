package vdm

// RoutePolyline is one continuous traced vessel path on a lake. Many
// polylines exist per lake - point-to-point legs and full loop routes.
// Immutable once loaded from geometry data.
type RoutePolyline struct {
	ID     string       `json:"id"`
	Name   string       `json:"name,omitempty"`
	Ref    string       `json:"ref,omitempty"`
	Kind   string       `json:"kind,omitempty"`
	Points []Coordinate `json:"points"`
}

// LengthKm is the summed haversine length of all line segments.
func (p RoutePolyline) LengthKm() float64 {
	return PathLengthKm(p.Points)
}

// NearestPointIndex returns the index of the polyline point closest to c and
// its distance in km. Returns (-1, +Inf equivalent) semantics via ok=false
// when the polyline is empty.
func (p RoutePolyline) NearestPointIndex(c Coordinate) (int, float64) {
	bestIndex := -1
	bestDistance := 0.0

	for i, point := range p.Points {
		distance := c.DistanceKm(point)
		if bestIndex == -1 || distance < bestDistance {
			bestIndex = i
			bestDistance = distance
		}
	}

	return bestIndex, bestDistance
}

// PathLengthKm is the summed haversine length of a coordinate sequence.
func PathLengthKm(points []Coordinate) float64 {
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		total += points[i].DistanceKm(points[i+1])
	}

	return total
}
