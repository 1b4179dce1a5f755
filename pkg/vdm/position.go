package vdm

import "time"

type VesselStatus string

const (
	VesselStatusAtStation VesselStatus = "at_station"
	VesselStatusDriving   VesselStatus = "driving"
)

// PositionSnapshot is a vessel's estimated live state at one tick.
// Ephemeral - recomputed every tick and never persisted.
type PositionSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	HeadingDeg float64 `json:"heading_deg"`
	SpeedKnots float64 `json:"speed_knots"`

	Status VesselStatus `json:"status"`

	FromStation string `json:"from_station"`
	ToStation   string `json:"to_station"`

	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`

	InternalCourseNumber string `json:"internal_course_number,omitempty"`
	OfficialCourseNumber string `json:"official_course_number,omitempty"`
}

// IdentityKey collapses overlapping snapshots of the same vessel. Note the
// ordering differs from JourneySegment.IdentityKey: overlap resolution keys
// on the internal course number first and only falls back to the display
// name, which may be a generic course label.
func (p *PositionSnapshot) IdentityKey() string {
	if p.InternalCourseNumber != "" {
		return p.InternalCourseNumber
	}

	return p.Name
}
