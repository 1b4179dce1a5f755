package vdm

import "time"

// StopVisit is one visited stop within a scheduled working. StationName is
// empty when the upstream stationboard omitted the station reference, which
// means the visit belongs to the station the board was queried for.
type StopVisit struct {
	StationName string     `json:"station_name"`
	Arrival     *time.Time `json:"arrival,omitempty"`
	Departure   *time.Time `json:"departure,omitempty"`
}

// ScheduleEntry is one scheduled working of a vessel as returned by a
// stationboard query. Never mutated after creation.
type ScheduleEntry struct {
	JourneyLabel   string      `json:"journey_label"`
	OfficialNumber string      `json:"official_number"`
	MainStop       string      `json:"main_stop"`
	PassList       []StopVisit `json:"pass_list"`
}
