package routematch

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// ErrNoMatch means no polyline came close enough to both stations.
var ErrNoMatch = errors.New("no route polyline matched")

// Strategy matches a station pair against a lake's polylines. Lakes with
// unusual topology (circular sightseeing routes) register their own.
type Strategy interface {
	TryMatch(lake *lakes.Lake, polylines []vdm.RoutePolyline, from vdm.Station, to vdm.Station, courseNumber string) ([]vdm.Coordinate, error)
}

// Matcher extracts the stretch of route geometry a vessel travels between
// two stations. Lake specific strategies run first, the generic
// point-to-point scorer is the fallback for everything.
type Matcher struct {
	Weights Weights

	strategies map[string]Strategy
}

func NewMatcher(registry *lakes.Registry) *Matcher {
	matcher := &Matcher{
		Weights:    DefaultWeights(),
		strategies: map[string]Strategy{},
	}

	for _, lake := range registry.All() {
		if lake.LoopRoute != nil {
			matcher.strategies[lake.ID] = &LoopStrategy{Weights: matcher.Weights}
		}
	}

	return matcher
}

// RegisterStrategy overrides the matching strategy for one lake.
func (m *Matcher) RegisterStrategy(lakeID string, strategy Strategy) {
	m.strategies[lakeID] = strategy
}

// Match returns the polyline points from the departure station to the
// arrival station, in travel direction.
func (m *Matcher) Match(lake *lakes.Lake, polylines []vdm.RoutePolyline, from vdm.Station, to vdm.Station, courseNumber string) ([]vdm.Coordinate, error) {
	if strategy, ok := m.strategies[lake.ID]; ok {
		points, err := strategy.TryMatch(lake, polylines, from, to, courseNumber)
		if err == nil {
			return points, nil
		}
		if !errors.Is(err, ErrNoMatch) {
			return nil, err
		}

		log.Debug().
			Str("lake", lake.ID).
			Str("from", from.Name).
			Str("to", to.Name).
			Msg("Lake strategy found no match, trying generic matcher")
	}

	return m.matchPointToPoint(lake, polylines, from, to, courseNumber)
}
