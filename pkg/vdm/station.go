package vdm

// Station is a single vessel landing stage. Identity is the name after
// lake-level normalisation; ExternalRef carries the transit-network
// identifier (UIC reference) when known.
type Station struct {
	Name        string  `json:"name" bson:"name"`
	Latitude    float64 `json:"latitude" bson:"latitude"`
	Longitude   float64 `json:"longitude" bson:"longitude"`
	ExternalRef string  `json:"external_ref,omitempty" bson:"externalref,omitempty"`
}

func (s Station) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}
