package transportapi

import (
	"time"

	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// Location is a stop as represented on the wire. Coordinate x is latitude
// and y is longitude in the upstream's convention.
type Location struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Coordinate struct {
		Type string  `json:"type"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	} `json:"coordinate"`
}

// StopVisit is one visited stop of a scheduled working. Station may be
// missing, which means the visit belongs to the queried station itself.
type StopVisit struct {
	Station   *Location `json:"station"`
	Arrival   *string   `json:"arrival"`
	Departure *string   `json:"departure"`
}

// StationboardEntry is one scheduled working on a stationboard response.
type StationboardEntry struct {
	Stop     StopVisit   `json:"stop"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Number   string      `json:"number"`
	To       string      `json:"to"`
	Operator string      `json:"operator"`
	PassList []StopVisit `json:"passList"`
}

type stationboardResponse struct {
	Stationboard []StationboardEntry `json:"stationboard"`
}

// timestampLayouts covers the upstream's RFC3339-with and without-colon
// timezone variants.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

func parseTimestamp(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, *value); err == nil {
			return &parsed
		}
	}

	return nil
}

// ToScheduleEntry converts a wire entry into the engine's schedule model.
// mainStation is the station the board was queried for; stop visits without
// a station reference get resolved to it later.
func (e StationboardEntry) ToScheduleEntry(mainStation string) vdm.ScheduleEntry {
	entry := vdm.ScheduleEntry{
		JourneyLabel:   e.Name,
		OfficialNumber: e.Number,
		MainStop:       mainStation,
	}

	for _, visit := range e.PassList {
		stopVisit := vdm.StopVisit{
			Arrival:   parseTimestamp(visit.Arrival),
			Departure: parseTimestamp(visit.Departure),
		}

		if visit.Station != nil {
			stopVisit.StationName = visit.Station.Name
		}

		entry.PassList = append(entry.PassList, stopVisit)
	}

	return entry
}
