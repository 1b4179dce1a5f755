// Package lakes holds the static per-lake configuration: curated stations,
// station-name variants, geometry file locations and loop-route behaviour.
package lakes

import (
	"strings"

	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// StationConfig is one curated landing stage in a lake definition file.
type StationConfig struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	UICRef    string  `yaml:"uic_ref,omitempty"`
}

// StationPair names two stations regardless of direction.
type StationPair struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// Matches reports whether the pair covers the two given station names in
// either order, by case-insensitive substring so API name variants still hit.
func (p StationPair) Matches(from string, to string) bool {
	lowerFrom := strings.ToLower(from)
	lowerTo := strings.ToLower(to)
	lowerA := strings.ToLower(p.A)
	lowerB := strings.ToLower(p.B)

	return (strings.Contains(lowerFrom, lowerA) && strings.Contains(lowerTo, lowerB)) ||
		(strings.Contains(lowerFrom, lowerB) && strings.Contains(lowerTo, lowerA))
}

// LoopRouteConfig marks a lake whose service is a single circular route and
// configures how the loop polyline is recognised and traversed.
type LoopRouteConfig struct {
	// Refs and NameHints identify the loop polyline among the lake's
	// traced routes.
	Refs      []string `yaml:"refs,omitempty"`
	NameHints []string `yaml:"name_hints,omitempty"`

	MaxStationDistanceKm float64 `yaml:"max_station_distance_km"`

	// DirectPairs are station pairs that historically do not ride the full
	// loop: a direct point-to-point polyline is preferred when one exists,
	// otherwise the strictly shorter arc is taken. Kept as configuration
	// data rather than inferred from geometry.
	DirectPairs []StationPair `yaml:"direct_pairs,omitempty"`

	// DirectRefs / DirectNameHints identify candidate direct polylines for
	// DirectPairs. DirectNameExcludes removes false positives such as the
	// loop itself.
	DirectRefs         []string `yaml:"direct_refs,omitempty"`
	DirectNameHints    []string `yaml:"direct_name_hints,omitempty"`
	DirectNameExcludes []string `yaml:"direct_name_excludes,omitempty"`
}

// BonusRule grants an extra route-matching score when a specific course
// works a specially traced polyline.
type BonusRule struct {
	CourseNumber string   `yaml:"course_number"`
	NameContains []string `yaml:"name_contains"`
	Bonus        float64  `yaml:"bonus"`
}

type Lake struct {
	ID     string    `yaml:"id"`
	Name   string    `yaml:"name"`
	Center []float64 `yaml:"center,omitempty"`
	Zoom   int       `yaml:"zoom,omitempty"`

	GeoJSONPath string `yaml:"geojson_path"`

	// HasShipNames marks lakes whose operator publishes a daily
	// course-number to ship-name registry.
	HasShipNames bool `yaml:"has_ship_names"`

	Stations    []StationConfig   `yaml:"stations"`
	NameMapping map[string]string `yaml:"name_mapping,omitempty"`

	LoopRoute  *LoopRouteConfig `yaml:"loop_route,omitempty"`
	BonusRules []BonusRule      `yaml:"bonus_rules,omitempty"`
}

// StationNames lists the curated station names, the keys the stationboard
// API is queried with.
func (l *Lake) StationNames() []string {
	names := make([]string, 0, len(l.Stations))
	for _, station := range l.Stations {
		names = append(names, station.Name)
	}

	return names
}

// Station resolves a normalised station name to its curated definition.
func (l *Lake) Station(name string) (vdm.Station, bool) {
	for _, station := range l.Stations {
		if station.Name == name {
			return vdm.Station{
				Name:        station.Name,
				Latitude:    station.Latitude,
				Longitude:   station.Longitude,
				ExternalRef: station.UICRef,
			}, true
		}
	}

	return vdm.Station{}, false
}
