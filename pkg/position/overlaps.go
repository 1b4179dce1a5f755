package position

import (
	"sort"
	"time"

	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// ResolveOverlaps collapses multiple snapshots of the same vessel into one.
// Turnarounds and post-arrival grace windows routinely produce a vessel that
// is both "arrived" on one leg and "departing" or already underway on the
// next. A moving vessel always wins over a parked one; between two parked
// snapshots the one closest to its scheduled times wins; between two moving
// ones the later departure is the leg actually underway.
func ResolveOverlaps(now time.Time, snapshots []vdm.PositionSnapshot) []vdm.PositionSnapshot {
	byVessel := map[string]vdm.PositionSnapshot{}
	order := []string{}

	for _, snapshot := range snapshots {
		key := snapshot.IdentityKey()

		current, exists := byVessel[key]
		if !exists {
			byVessel[key] = snapshot
			order = append(order, key)
			continue
		}

		if prefer(now, snapshot, current) {
			byVessel[key] = snapshot
		}
	}

	resolved := make([]vdm.PositionSnapshot, 0, len(order))
	for _, key := range order {
		resolved = append(resolved, byVessel[key])
	}

	sort.Slice(resolved, func(i, j int) bool {
		return resolved[i].ID < resolved[j].ID
	})

	return resolved
}

func prefer(now time.Time, challenger vdm.PositionSnapshot, incumbent vdm.PositionSnapshot) bool {
	if challenger.Status != incumbent.Status {
		return challenger.Status == vdm.VesselStatusDriving
	}

	if challenger.Status == vdm.VesselStatusDriving {
		return challenger.DepartureTime.After(incumbent.DepartureTime)
	}

	return scheduleDistance(now, challenger) < scheduleDistance(now, incumbent)
}

// scheduleDistance is how far now sits from the snapshot's nearest scheduled
// event, departure or arrival.
func scheduleDistance(now time.Time, snapshot vdm.PositionSnapshot) time.Duration {
	untilDeparture := absDuration(now.Sub(snapshot.DepartureTime))
	sinceArrival := absDuration(now.Sub(snapshot.ArrivalTime))

	if untilDeparture < sinceArrival {
		return untilDeparture
	}

	return sinceArrival
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}
