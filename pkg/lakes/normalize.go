package lakes

import (
	"strings"

	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// stripSuffixes are appended by the transit API to disambiguate lake stops
// from same-named bus or rail stops; they get removed before variant lookup.
var stripSuffixes = []string{" (See)", " (See-Schiff)", " ZH", " SG", " SZ"}

// NormalizeStationName maps the station name variants the transit API emits
// onto the lake's canonical station names. Unknown names pass through
// unchanged.
func (l *Lake) NormalizeStationName(name string) string {
	if name == "" {
		return name
	}

	if canonical, ok := l.lookupMapping(name); ok {
		return canonical
	}

	if canonical, ok := l.lookupMapping(CleanStationName(name)); ok {
		return canonical
	}

	return name
}

// CleanStationName removes the disambiguation suffixes from a station name.
func CleanStationName(name string) string {
	for _, suffix := range stripSuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}

	return strings.TrimSpace(name)
}

func (l *Lake) lookupMapping(name string) (string, bool) {
	upperName := strings.ToUpper(name)

	for variant, canonical := range l.NameMapping {
		if strings.ToUpper(variant) == upperName {
			return canonical, true
		}
	}

	return "", false
}

// StationCoordinates builds the name to coordinate lookup used by the
// segment builder, including suffix-free variants for incomplete API names.
func (l *Lake) StationCoordinates() map[string]vdm.Coordinate {
	coordinates := map[string]vdm.Coordinate{}

	for _, station := range l.Stations {
		coordinate := vdm.Coordinate{Latitude: station.Latitude, Longitude: station.Longitude}
		coordinates[station.Name] = coordinate

		withoutSuffix := strings.ReplaceAll(station.Name, " (See)", "")
		if _, exists := coordinates[withoutSuffix]; !exists {
			coordinates[withoutSuffix] = coordinate
		}
	}

	return coordinates
}

// MergeStations combines the curated station list with stations derived from
// geometry data. Curated entries always win on a name collision.
func MergeStations(curated []vdm.Station, derived []vdm.Station) []vdm.Station {
	merged := make([]vdm.Station, 0, len(curated)+len(derived))
	seen := map[string]bool{}

	for _, station := range curated {
		merged = append(merged, station)
		seen[station.Name] = true
	}

	for _, station := range derived {
		if seen[station.Name] {
			continue
		}

		merged = append(merged, station)
		seen[station.Name] = true
	}

	return merged
}

// CuratedStations converts the lake's configured stations to the shared
// model type.
func (l *Lake) CuratedStations() []vdm.Station {
	stations := make([]vdm.Station, 0, len(l.Stations))
	for _, station := range l.Stations {
		stations = append(stations, vdm.Station{
			Name:        station.Name,
			Latitude:    station.Latitude,
			Longitude:   station.Longitude,
			ExternalRef: station.UICRef,
		})
	}

	return stations
}
