package position

import (
	"math"
	"testing"
	"time"

	"github.com/vesselsim/vesselsim/pkg/vdm"
)

func almostEqual(a float64, b float64, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func testLeg() vdm.JourneySegment {
	from := vdm.Station{Name: "A", Latitude: 0, Longitude: 0}
	to := vdm.Station{Name: "B", Latitude: 0, Longitude: 1}

	departure := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	arrival := time.Date(2026, 8, 29, 13, 0, 0, 0, time.UTC)

	return vdm.JourneySegment{
		LakeID:                 "testsee",
		From:                   from,
		To:                     to,
		DepartureTime:          departure,
		ArrivalTime:            arrival,
		ArrivalAtOriginStation: departure.Add(-time.Minute),
		OriginArrivalEstimated: true,
		DistanceKm:             from.Coordinate().DistanceKm(to.Coordinate()),
		InternalCourseNumber:   "57",
	}
}

func TestVisibilityWindow(t *testing.T) {
	interpolator := NewInterpolator()
	leg := testLeg()

	testCases := []struct {
		name     string
		now      time.Time
		visible  bool
		status   vdm.VesselStatus
		atOrigin bool
	}{
		{"before dwell window", leg.DepartureTime.Add(-16 * time.Minute), false, "", false},
		{"dwell window opens", leg.DepartureTime.Add(-15 * time.Minute), true, vdm.VesselStatusAtStation, true},
		{"waiting at origin", leg.DepartureTime.Add(-time.Minute), true, vdm.VesselStatusAtStation, true},
		{"underway", leg.DepartureTime.Add(30 * time.Minute), true, vdm.VesselStatusDriving, false},
		{"just arrived", leg.ArrivalTime, true, vdm.VesselStatusAtStation, false},
		{"within grace", leg.ArrivalTime.Add(10 * time.Minute), true, vdm.VesselStatusAtStation, false},
		{"grace expired", leg.ArrivalTime.Add(10*time.Minute + time.Second), false, "", false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			snapshot, visible := interpolator.PositionAt(leg, testCase.now)
			if visible != testCase.visible {
				t.Fatalf("visible = %v, expected %v", visible, testCase.visible)
			}
			if !visible {
				return
			}

			if snapshot.Status != testCase.status {
				t.Errorf("status = %s, expected %s", snapshot.Status, testCase.status)
			}
			if testCase.atOrigin {
				if snapshot.Longitude != leg.From.Longitude || snapshot.SpeedKnots != 0 {
					t.Errorf("expected parked at origin, got %+v", snapshot)
				}
			}
		})
	}
}

func TestParkedVesselReportsZeroHeading(t *testing.T) {
	interpolator := NewInterpolator()
	leg := testLeg()

	waiting, _ := interpolator.PositionAt(leg, leg.DepartureTime.Add(-time.Minute))
	if waiting.HeadingDeg != 0 {
		t.Errorf("heading while waiting at origin = %f, expected 0", waiting.HeadingDeg)
	}

	arrived, _ := interpolator.PositionAt(leg, leg.ArrivalTime.Add(5*time.Minute))
	if arrived.HeadingDeg != 0 {
		t.Errorf("heading during post-arrival grace = %f, expected 0", arrived.HeadingDeg)
	}
}

func TestRecordedOriginArrivalOpensDwellEarlier(t *testing.T) {
	interpolator := NewInterpolator()

	leg := testLeg()
	leg.ArrivalAtOriginStation = leg.DepartureTime.Add(-45 * time.Minute)
	leg.OriginArrivalEstimated = false

	if _, visible := interpolator.PositionAt(leg, leg.DepartureTime.Add(-40*time.Minute)); !visible {
		t.Error("vessel with recorded turnaround should be visible from its actual arrival")
	}
	if _, visible := interpolator.PositionAt(leg, leg.DepartureTime.Add(-46*time.Minute)); visible {
		t.Error("vessel should stay hidden before it arrives at the origin")
	}
}

func TestDrivingMidpoint(t *testing.T) {
	interpolator := NewInterpolator()
	leg := testLeg()

	snapshot, visible := interpolator.PositionAt(leg, leg.DepartureTime.Add(30*time.Minute))
	if !visible {
		t.Fatal("vessel should be visible mid-leg")
	}

	// The speed profile is symmetric, so half the time means half the way.
	if !almostEqual(snapshot.Longitude, 0.5, 0.001) {
		t.Errorf("midpoint longitude = %f, expected 0.5", snapshot.Longitude)
	}
	if !almostEqual(snapshot.HeadingDeg, 90, 0.5) {
		t.Errorf("heading = %f, expected due east", snapshot.HeadingDeg)
	}
	if snapshot.SpeedKnots != DefaultCruisingSpeedKnots {
		t.Errorf("mid-leg speed = %f, expected cruise", snapshot.SpeedKnots)
	}
}

func TestDrivingBoundaries(t *testing.T) {
	interpolator := NewInterpolator()
	leg := testLeg()

	atDeparture, _ := interpolator.PositionAt(leg, leg.DepartureTime)
	if atDeparture.Status != vdm.VesselStatusDriving {
		t.Errorf("exactly at departure the vessel is underway, got %s", atDeparture.Status)
	}
	if !almostEqual(atDeparture.Longitude, 0, 1e-9) {
		t.Errorf("progress at departure should be zero, got longitude %f", atDeparture.Longitude)
	}
	if atDeparture.SpeedKnots != DefaultApproachSpeedKnots {
		t.Errorf("speed leaving the dock = %f, expected approach speed", atDeparture.SpeedKnots)
	}

	justBeforeArrival, _ := interpolator.PositionAt(leg, leg.ArrivalTime.Add(-time.Second))
	if justBeforeArrival.SpeedKnots != DefaultApproachSpeedKnots {
		t.Errorf("speed entering the dock = %f, expected approach speed", justBeforeArrival.SpeedKnots)
	}
	if justBeforeArrival.Longitude <= 0.99 {
		t.Errorf("vessel should be nearly there, got longitude %f", justBeforeArrival.Longitude)
	}
}

func TestDrivingProgressIsMonotonic(t *testing.T) {
	interpolator := NewInterpolator()
	leg := testLeg()

	previous := -1.0
	for minute := 0; minute <= 60; minute++ {
		now := leg.DepartureTime.Add(time.Duration(minute) * time.Minute)
		snapshot, visible := interpolator.PositionAt(leg, now)
		if !visible {
			t.Fatalf("vessel invisible at minute %d", minute)
		}

		if snapshot.Longitude < previous {
			t.Fatalf("progress went backwards at minute %d: %f < %f", minute, snapshot.Longitude, previous)
		}
		previous = snapshot.Longitude
	}

	if !almostEqual(previous, 1, 1e-9) {
		t.Errorf("vessel should end at the destination, got longitude %f", previous)
	}
}

func TestShortHopEasesLinearly(t *testing.T) {
	interpolator := NewInterpolator()

	leg := testLeg()
	leg.To = vdm.Station{Name: "B", Latitude: 0, Longitude: 0.003}
	leg.DistanceKm = leg.From.Coordinate().DistanceKm(leg.To.Coordinate())

	snapshot, _ := interpolator.PositionAt(leg, leg.DepartureTime.Add(30*time.Minute))
	if !almostEqual(snapshot.Longitude, 0.0015, 0.0001) {
		t.Errorf("short hop should progress linearly, got longitude %f", snapshot.Longitude)
	}
	if snapshot.SpeedKnots != DefaultApproachSpeedKnots {
		t.Errorf("a hop this short is all approach, got speed %f", snapshot.SpeedKnots)
	}
}

func TestDrivingFollowsMatchedPolyline(t *testing.T) {
	interpolator := NewInterpolator()

	leg := testLeg()
	leg.MatchedPolyline = []vdm.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0.2, Longitude: 0.5},
		{Latitude: 0, Longitude: 1},
	}
	leg.DistanceKm = vdm.PathLengthKm(leg.MatchedPolyline)

	snapshot, _ := interpolator.PositionAt(leg, leg.DepartureTime.Add(30*time.Minute))
	if snapshot.Latitude < 0.05 {
		t.Errorf("vessel should follow the detour, got latitude %f", snapshot.Latitude)
	}
}

func TestPositionAlongPolyline(t *testing.T) {
	path := []vdm.Coordinate{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.5},
		{Latitude: 0.5, Longitude: 0.5},
	}

	start, startHeading := PositionAlongPolyline(path, 0)
	if start != path[0] || !almostEqual(startHeading, 90, 0.01) {
		t.Errorf("start of path wrong: %+v heading %f", start, startHeading)
	}

	end, endHeading := PositionAlongPolyline(path, 1)
	if end != path[2] || !almostEqual(endHeading, 0, 0.01) {
		t.Errorf("end of path wrong: %+v heading %f", end, endHeading)
	}

	// Half the total arc length still sits on the first, longer leg.
	halfway, halfwayHeading := PositionAlongPolyline(path, 0.5)
	if halfway.Latitude != 0 || !almostEqual(halfwayHeading, 90, 0.01) {
		t.Errorf("halfway point should be on the eastbound leg: %+v", halfway)
	}
	if !almostEqual(halfway.Longitude, 0.375, 0.001) {
		t.Errorf("halfway longitude = %f, expected 0.375", halfway.Longitude)
	}
}

func TestSnapshotIdentity(t *testing.T) {
	interpolator := NewInterpolator()
	leg := testLeg()

	snapshot, _ := interpolator.PositionAt(leg, leg.DepartureTime.Add(10*time.Minute))
	if snapshot.Name != "Ship (course 57)" {
		t.Errorf("unnamed vessel should get a generic label, got %q", snapshot.Name)
	}
	if snapshot.FromStation != "A" || snapshot.ToStation != "B" {
		t.Errorf("stations missing from snapshot: %+v", snapshot)
	}
	if snapshot.ID == "" {
		t.Error("snapshot needs a stable identifier")
	}
}
