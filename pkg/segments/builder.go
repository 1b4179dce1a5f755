// Package segments turns raw stationboard entries into journey segments, the
// station-to-station legs every position calculation runs on.
package segments

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/util"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// ErrMalformedEntry marks a schedule leg missing the timestamps needed to
// place a vessel on it. Such legs are skipped, their siblings still build.
var ErrMalformedEntry = errors.New("schedule entry missing required timestamps")

// NameResolver resolves a course number to a real ship name for a service
// date.
type NameResolver interface {
	ResolveName(ctx context.Context, courseNumber string, date string) (string, error)
}

// PolylineMatcher extracts the route geometry between two stations.
type PolylineMatcher interface {
	Match(lake *lakes.Lake, polylines []vdm.RoutePolyline, from vdm.Station, to vdm.Station, courseNumber string) ([]vdm.Coordinate, error)
}

type Builder struct {
	// Resolver may be nil for lakes without a published vessel roster.
	Resolver NameResolver
	Matcher  PolylineMatcher
}

func NewBuilder(resolver NameResolver, matcher PolylineMatcher) *Builder {
	return &Builder{
		Resolver: resolver,
		Matcher:  matcher,
	}
}

// Build converts one reload's stationboards into deduplicated, chained
// journey segments ordered by departure time. stations is the merged
// curated-plus-derived station list. The same input always produces the
// same output.
func (b *Builder) Build(ctx context.Context, lake *lakes.Lake, polylines []vdm.RoutePolyline, stations []vdm.Station, schedules map[string][]vdm.ScheduleEntry, date string) []vdm.JourneySegment {
	index := buildStationIndex(stations)
	names := b.prefetchNames(ctx, lake, schedules, date)

	stationNames := maps.Keys(schedules)
	slices.Sort(stationNames)

	var built []vdm.JourneySegment
	for _, stationName := range stationNames {
		for _, entry := range schedules[stationName] {
			built = append(built, b.entrySegments(lake, polylines, index, entry, names)...)
		}
	}

	built = dedupe(built)
	chainTurnarounds(built)

	sort.Slice(built, func(i, j int) bool {
		if !built[i].DepartureTime.Equal(built[j].DepartureTime) {
			return built[i].DepartureTime.Before(built[j].DepartureTime)
		}
		return built[i].DedupKey() < built[j].DedupKey()
	})

	log.Info().
		Str("lake", lake.ID).
		Int("segments", len(built)).
		Msg("Built journey segments")

	return built
}

type stopVisit struct {
	Name      string
	Arrival   *time.Time
	Departure *time.Time
}

func (b *Builder) entrySegments(lake *lakes.Lake, polylines []vdm.RoutePolyline, index map[string]vdm.Station, entry vdm.ScheduleEntry, names map[string]string) []vdm.JourneySegment {
	visits := normalizeVisits(lake, entry)
	if len(visits) < 2 {
		return nil
	}

	internalNumber := util.FirstInteger(entry.JourneyLabel)
	officialNumber := entry.OfficialNumber
	if officialNumber == "" {
		officialNumber = internalNumber
	}
	if internalNumber == "" {
		internalNumber = officialNumber
	}

	var built []vdm.JourneySegment
	for visitIndex := 0; visitIndex+1 < len(visits); visitIndex++ {
		from := visits[visitIndex]
		to := visits[visitIndex+1]

		if from.Departure == nil || to.Arrival == nil {
			log.Debug().
				Err(ErrMalformedEntry).
				Str("lake", lake.ID).
				Str("from", from.Name).
				Str("to", to.Name).
				Msg("Skipping leg")
			continue
		}
		if from.Name == to.Name {
			continue
		}

		fromStation, fromKnown := resolveStation(index, from.Name)
		toStation, toKnown := resolveStation(index, to.Name)
		if !fromKnown || !toKnown {
			log.Debug().
				Str("lake", lake.ID).
				Str("from", from.Name).
				Str("to", to.Name).
				Msg("Skipping leg between unknown stations")
			continue
		}

		// The vessel roster is keyed by the internal course number; the
		// official one only helps when the journey label carried no digits.
		shipName := names[internalNumber]
		if shipName == "" {
			shipName = names[officialNumber]
		}

		segment := vdm.JourneySegment{
			LakeID:               lake.ID,
			From:                 fromStation,
			To:                   toStation,
			DepartureTime:        *from.Departure,
			ArrivalTime:          *to.Arrival,
			InternalCourseNumber: internalNumber,
			OfficialCourseNumber: officialNumber,
			ResolvedShipName:     shipName,
		}

		if from.Arrival != nil {
			segment.ArrivalAtOriginStation = *from.Arrival
		} else {
			segment.ArrivalAtOriginStation = from.Departure.Add(-time.Minute)
			segment.OriginArrivalEstimated = true
		}

		matched, err := b.Matcher.Match(lake, polylines, fromStation, toStation, officialNumber)
		if err == nil {
			segment.MatchedPolyline = matched
			segment.DistanceKm = vdm.PathLengthKm(matched)
		} else {
			segment.DistanceKm = fromStation.Coordinate().DistanceKm(toStation.Coordinate())
			log.Debug().
				Str("lake", lake.ID).
				Str("from", fromStation.Name).
				Str("to", toStation.Name).
				Msg("No polyline matched, using straight line distance")
		}

		built = append(built, segment)
	}

	return built
}

// normalizeVisits resolves missing station references to the queried
// station, maps names to their canonical form and merges consecutive visits
// of the same station, keeping the first timestamp seen for each field.
func normalizeVisits(lake *lakes.Lake, entry vdm.ScheduleEntry) []stopVisit {
	var visits []stopVisit

	for _, visit := range entry.PassList {
		name := visit.StationName
		if name == "" {
			name = entry.MainStop
		}
		name = lake.NormalizeStationName(name)

		if len(visits) > 0 && visits[len(visits)-1].Name == name {
			previous := &visits[len(visits)-1]
			if previous.Arrival == nil {
				previous.Arrival = visit.Arrival
			}
			if previous.Departure == nil {
				previous.Departure = visit.Departure
			}
			continue
		}

		visits = append(visits, stopVisit{
			Name:      name,
			Arrival:   visit.Arrival,
			Departure: visit.Departure,
		})
	}

	return visits
}

func buildStationIndex(stations []vdm.Station) map[string]vdm.Station {
	index := map[string]vdm.Station{}

	for _, station := range stations {
		index[station.Name] = station

		cleaned := lakes.CleanStationName(station.Name)
		if _, exists := index[cleaned]; !exists {
			index[cleaned] = station
		}
	}

	return index
}

func resolveStation(index map[string]vdm.Station, name string) (vdm.Station, bool) {
	if station, ok := index[name]; ok {
		return station, true
	}

	station, ok := index[lakes.CleanStationName(name)]
	return station, ok
}

// prefetchNames resolves every distinct course number of the reload
// concurrently so segment assembly itself stays serial and deterministic.
func (b *Builder) prefetchNames(ctx context.Context, lake *lakes.Lake, schedules map[string][]vdm.ScheduleEntry, date string) map[string]string {
	names := map[string]string{}
	if b.Resolver == nil || !lake.HasShipNames {
		return names
	}

	distinct := map[string]bool{}
	for _, entries := range schedules {
		for _, entry := range entries {
			number := util.FirstInteger(entry.JourneyLabel)
			if number == "" {
				number = entry.OfficialNumber
			}
			if number != "" {
				distinct[number] = true
			}
		}
	}

	type resolvedName struct {
		Number string
		Name   string
	}

	resolvePool := pool.NewWithResults[resolvedName]()
	for number := range distinct {
		resolvePool.Go(func() resolvedName {
			name, err := b.Resolver.ResolveName(ctx, number, date)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Debug().Str("course", number).Str("date", date).Msg("Vessel identity unresolved")
				}
				return resolvedName{Number: number}
			}

			return resolvedName{Number: number, Name: name}
		})
	}

	for _, resolved := range resolvePool.Wait() {
		if resolved.Name != "" {
			names[resolved.Number] = resolved.Name
		}
	}

	return names
}

// dedupe collapses the same physical leg reported by both endpoint
// stationboards, preferring the instance that carries matched geometry.
func dedupe(built []vdm.JourneySegment) []vdm.JourneySegment {
	byKey := map[string]int{}
	var out []vdm.JourneySegment

	for _, segment := range built {
		key := segment.DedupKey()
		if existing, ok := byKey[key]; ok {
			if len(out[existing].MatchedPolyline) == 0 && len(segment.MatchedPolyline) > 0 {
				out[existing] = segment
			}
			continue
		}

		byKey[key] = len(out)
		out = append(out, segment)
	}

	return out
}

// chainTurnarounds links consecutive legs of the same vessel: when a vessel
// arrives somewhere and departs from there next, the real arrival replaces
// the estimated origin arrival of the following leg.
func chainTurnarounds(built []vdm.JourneySegment) {
	byVessel := map[string][]int{}
	for index, segment := range built {
		key := segment.IdentityKey()
		byVessel[key] = append(byVessel[key], index)
	}

	for _, indices := range byVessel {
		sort.Slice(indices, func(i, j int) bool {
			return built[indices[i]].DepartureTime.Before(built[indices[j]].DepartureTime)
		})

		for position := 0; position+1 < len(indices); position++ {
			previous := &built[indices[position]]
			next := &built[indices[position+1]]

			if previous.To.Name == next.From.Name && !previous.ArrivalTime.After(next.DepartureTime) {
				next.ArrivalAtOriginStation = previous.ArrivalTime
				next.OriginArrivalEstimated = false
			}
		}
	}
}
