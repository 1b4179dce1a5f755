// Package position computes where every vessel is right now from its journey
// segments, using a speed profile instead of naive linear interpolation.
package position

import (
	"time"

	"github.com/vesselsim/vesselsim/pkg/vdm"
)

const (
	DefaultCruisingSpeedKnots = 12.0
	DefaultApproachSpeedKnots = 6.0

	// DefaultApproachDistanceKm is the stretch at each end of a leg covered
	// at approach speed, with quadratic easing from and to standstill.
	DefaultApproachDistanceKm = 0.25

	DefaultPreDepartureDwell = 15 * time.Minute
	DefaultPostArrivalGrace  = 10 * time.Minute
)

// Interpolator derives vessel positions from journey segments. All fields
// are set once at construction and never mutated, so a single instance is
// safe for concurrent use.
type Interpolator struct {
	CruisingSpeedKnots float64
	ApproachSpeedKnots float64
	ApproachDistanceKm float64

	// PreDepartureDwell bounds how early a vessel appears at its origin
	// station when the schedule recorded no prior arrival there.
	PreDepartureDwell time.Duration
	PostArrivalGrace  time.Duration
}

func NewInterpolator() *Interpolator {
	return &Interpolator{
		CruisingSpeedKnots: DefaultCruisingSpeedKnots,
		ApproachSpeedKnots: DefaultApproachSpeedKnots,
		ApproachDistanceKm: DefaultApproachDistanceKm,
		PreDepartureDwell:  DefaultPreDepartureDwell,
		PostArrivalGrace:   DefaultPostArrivalGrace,
	}
}

// PositionAt returns the vessel's snapshot for the segment at the given
// instant. The second return is false when the vessel is not visible:
// before its dwell window opens or after the post-arrival grace expires.
func (i *Interpolator) PositionAt(segment vdm.JourneySegment, now time.Time) (vdm.PositionSnapshot, bool) {
	dwellStart := segment.ArrivalAtOriginStation
	if segment.OriginArrivalEstimated {
		dwellStart = segment.DepartureTime.Add(-i.PreDepartureDwell)
	}

	if now.Before(dwellStart) {
		return vdm.PositionSnapshot{}, false
	}

	if now.Before(segment.DepartureTime) {
		return i.atStation(segment, segment.From), true
	}

	if now.Before(segment.ArrivalTime) {
		return i.driving(segment, now), true
	}

	if !now.After(segment.ArrivalTime.Add(i.PostArrivalGrace)) {
		return i.atStation(segment, segment.To), true
	}

	return vdm.PositionSnapshot{}, false
}

// A parked vessel reports heading 0, route bearings only apply underway.
func (i *Interpolator) atStation(segment vdm.JourneySegment, station vdm.Station) vdm.PositionSnapshot {
	snapshot := snapshotBase(segment)
	snapshot.Latitude = station.Latitude
	snapshot.Longitude = station.Longitude
	snapshot.HeadingDeg = 0
	snapshot.SpeedKnots = 0
	snapshot.Status = vdm.VesselStatusAtStation

	return snapshot
}

func (i *Interpolator) driving(segment vdm.JourneySegment, now time.Time) vdm.PositionSnapshot {
	totalDuration := segment.ArrivalTime.Sub(segment.DepartureTime)
	elapsed := now.Sub(segment.DepartureTime)

	travelledKm := i.distanceTravelled(segment.DistanceKm, totalDuration, elapsed)

	fraction := 0.0
	if segment.DistanceKm > 0 {
		fraction = travelledKm / segment.DistanceKm
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	coordinate, heading := pointAtFraction(segment, fraction)

	snapshot := snapshotBase(segment)
	snapshot.Latitude = coordinate.Latitude
	snapshot.Longitude = coordinate.Longitude
	snapshot.HeadingDeg = heading
	snapshot.SpeedKnots = i.speedAt(segment.DistanceKm, travelledKm)
	snapshot.Status = vdm.VesselStatusDriving

	return snapshot
}

// distanceTravelled maps elapsed time onto covered distance. Legs longer
// than twice the approach distance get a three phase profile: quadratic
// ease-in over the first approach stretch, constant cruise, quadratic
// ease-out over the last stretch. Short hops ease linearly.
func (i *Interpolator) distanceTravelled(totalKm float64, totalDuration time.Duration, elapsed time.Duration) float64 {
	if totalDuration <= 0 || totalKm <= 0 {
		return 0
	}
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= totalDuration {
		return totalKm
	}

	approachKm := i.ApproachDistanceKm
	if totalKm <= 2*approachKm {
		return totalKm * float64(elapsed) / float64(totalDuration)
	}

	cruiseKm := totalKm - 2*approachKm

	// Approach stretches run at half cruise speed, so each approach
	// kilometre takes twice as long as a cruise kilometre.
	equivalentKm := cruiseKm + 4*approachKm
	approachDuration := time.Duration(float64(totalDuration) * 2 * approachKm / equivalentKm)
	cruiseDuration := totalDuration - 2*approachDuration

	switch {
	case elapsed < approachDuration:
		progress := float64(elapsed) / float64(approachDuration)
		return approachKm * progress * progress
	case elapsed < approachDuration+cruiseDuration:
		progress := float64(elapsed-approachDuration) / float64(cruiseDuration)
		return approachKm + cruiseKm*progress
	default:
		remaining := 1 - float64(elapsed-approachDuration-cruiseDuration)/float64(approachDuration)
		return totalKm - approachKm*remaining*remaining
	}
}

func (i *Interpolator) speedAt(totalKm float64, travelledKm float64) float64 {
	if travelledKm < i.ApproachDistanceKm || totalKm-travelledKm < i.ApproachDistanceKm {
		return i.ApproachSpeedKnots
	}

	return i.CruisingSpeedKnots
}

func pointAtFraction(segment vdm.JourneySegment, fraction float64) (vdm.Coordinate, float64) {
	if len(segment.MatchedPolyline) >= 2 {
		return PositionAlongPolyline(segment.MatchedPolyline, fraction)
	}

	from := segment.From.Coordinate()
	to := segment.To.Coordinate()

	return from.Interpolate(to, fraction), from.BearingTo(to)
}

// PositionAlongPolyline walks the polyline by arc length to the given
// fraction of its total length and returns the interpolated coordinate plus
// the bearing of the local polyline segment.
func PositionAlongPolyline(points []vdm.Coordinate, fraction float64) (vdm.Coordinate, float64) {
	if len(points) == 0 {
		return vdm.Coordinate{}, 0
	}
	if len(points) == 1 {
		return points[0], 0
	}

	if fraction <= 0 {
		return points[0], points[0].BearingTo(points[1])
	}
	if fraction >= 1 {
		last := len(points) - 1
		return points[last], points[last-1].BearingTo(points[last])
	}

	totalKm := vdm.PathLengthKm(points)
	if totalKm <= 0 {
		return points[0], points[0].BearingTo(points[1])
	}

	targetKm := totalKm * fraction
	walkedKm := 0.0

	for index := 0; index+1 < len(points); index++ {
		stepKm := points[index].DistanceKm(points[index+1])
		if walkedKm+stepKm >= targetKm {
			stepFraction := 0.0
			if stepKm > 0 {
				stepFraction = (targetKm - walkedKm) / stepKm
			}

			return points[index].Interpolate(points[index+1], stepFraction),
				points[index].BearingTo(points[index+1])
		}

		walkedKm += stepKm
	}

	last := len(points) - 1
	return points[last], points[last-1].BearingTo(points[last])
}

func snapshotBase(segment vdm.JourneySegment) vdm.PositionSnapshot {
	return vdm.PositionSnapshot{
		ID:                   segment.PrimaryIdentifier(),
		Name:                 segment.DisplayName(),
		FromStation:          segment.From.Name,
		ToStation:            segment.To.Name,
		DepartureTime:        segment.DepartureTime,
		ArrivalTime:          segment.ArrivalTime,
		InternalCourseNumber: segment.InternalCourseNumber,
		OfficialCourseNumber: segment.OfficialCourseNumber,
	}
}
