package vdm

import (
	"fmt"
	"time"
)

// JourneySegment is a single directed leg of a vessel journey between two
// stations. Several segments chained by vessel identity over a day form a
// journey. Invariants: DepartureTime < ArrivalTime and To.Name != From.Name.
type JourneySegment struct {
	LakeID string `json:"lake_id" bson:"lakeid"`

	From Station `json:"from" bson:"from"`
	To   Station `json:"to" bson:"to"`

	DepartureTime time.Time `json:"departure_time" bson:"departuretime"`
	ArrivalTime   time.Time `json:"arrival_time" bson:"arrivaltime"`

	// ArrivalAtOriginStation is when the vessel reached the origin station,
	// used to display the pre-departure dwell. OriginArrivalEstimated marks
	// segments where no prior arrival was recorded and a short default dwell
	// was substituted.
	ArrivalAtOriginStation time.Time `json:"arrival_at_origin_station" bson:"arrivalatoriginstation"`
	OriginArrivalEstimated bool      `json:"origin_arrival_estimated" bson:"originarrivalestimated"`

	DistanceKm float64 `json:"distance_km" bson:"distancekm"`

	InternalCourseNumber string `json:"internal_course_number" bson:"internalcoursenumber"`
	OfficialCourseNumber string `json:"official_course_number" bson:"officialcoursenumber"`
	ResolvedShipName     string `json:"resolved_ship_name" bson:"resolvedshipname"`

	// MatchedPolyline is the traced route the segment follows, filled in at
	// most once per segment per load cycle. Nil means no route matched and
	// interpolation falls back to the straight line between the stations.
	MatchedPolyline []Coordinate `json:"matched_polyline,omitempty" bson:"matchedpolyline,omitempty"`
}

// DedupKey collapses duplicate segments produced by querying overlapping
// stationboards. Times are rounded to the minute.
func (s *JourneySegment) DedupKey() string {
	return fmt.Sprintf("%s|%s|%d|%d",
		s.From.Name, s.To.Name,
		s.DepartureTime.Truncate(time.Minute).Unix(),
		s.ArrivalTime.Truncate(time.Minute).Unix())
}

// IdentityKey groups segments belonging to the same physical vessel. The
// resolved ship name wins when available, otherwise the internal course
// number stands in.
func (s *JourneySegment) IdentityKey() string {
	if s.ResolvedShipName != "" {
		return s.ResolvedShipName
	}

	return s.InternalCourseNumber
}

// DisplayName is what gets shown on a map marker: the real ship name when
// the roster resolved one, otherwise a generic label with the course number.
func (s *JourneySegment) DisplayName() string {
	if s.ResolvedShipName != "" {
		return s.ResolvedShipName
	}

	number := s.OfficialCourseNumber
	if number == "" {
		number = s.InternalCourseNumber
	}

	return fmt.Sprintf("Ship (course %s)", number)
}

// PrimaryIdentifier is a stable document key for one segment of one working.
func (s *JourneySegment) PrimaryIdentifier() string {
	return fmt.Sprintf("VESSELSIM:%s:%s:%d", s.LakeID, s.InternalCourseNumber, s.DepartureTime.Unix())
}
