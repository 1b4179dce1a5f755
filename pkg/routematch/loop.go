package routematch

import (
	"strings"

	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/util"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// LoopStrategy matches station pairs on lakes served by one circular
// sightseeing route. The boat always travels the loop in its traced
// direction, so the extracted stretch walks the ring forward and wraps past
// the closing point when needed. Configured direct pairs are the exception:
// those crossings use a direct polyline when one is traced, or the shorter
// arc of the ring.
type LoopStrategy struct {
	Weights Weights
}

func (s *LoopStrategy) TryMatch(lake *lakes.Lake, polylines []vdm.RoutePolyline, from vdm.Station, to vdm.Station, courseNumber string) ([]vdm.Coordinate, error) {
	config := lake.LoopRoute
	if config == nil {
		return nil, ErrNoMatch
	}

	if isDirectPair(config, from.Name, to.Name) {
		if points, err := s.matchDirect(lake, polylines, from, to, courseNumber); err == nil {
			return points, nil
		}
	}

	loop, startIndex, endIndex, found := s.locateOnLoop(config, polylines, from, to)
	if !found {
		return nil, ErrNoMatch
	}

	if isDirectPair(config, from.Name, to.Name) {
		return shorterArc(loop.Points, startIndex, endIndex), nil
	}

	return walkForward(loop.Points, startIndex, endIndex), nil
}

func isDirectPair(config *lakes.LoopRouteConfig, from string, to string) bool {
	for _, pair := range config.DirectPairs {
		if pair.Matches(from, to) {
			return true
		}
	}

	return false
}

// matchDirect runs the generic scorer over the polylines identified as
// direct crossings, skipping the loop itself.
func (s *LoopStrategy) matchDirect(lake *lakes.Lake, polylines []vdm.RoutePolyline, from vdm.Station, to vdm.Station, courseNumber string) ([]vdm.Coordinate, error) {
	config := lake.LoopRoute

	var candidates []vdm.RoutePolyline
	for _, polyline := range polylines {
		if !matchesHints(polyline, config.DirectRefs, config.DirectNameHints) {
			continue
		}
		if containsAny(strings.ToLower(polyline.Name), config.DirectNameExcludes) {
			continue
		}

		candidates = append(candidates, polyline)
	}

	best, found := bestCandidate(lake, candidates, from, to, courseNumber, s.Weights)
	if !found {
		return nil, ErrNoMatch
	}

	return best.points, nil
}

// locateOnLoop finds the loop polyline both stations sit on and their
// nearest vertices. Among several loop candidates the one passing closest
// to both stations wins.
func (s *LoopStrategy) locateOnLoop(config *lakes.LoopRouteConfig, polylines []vdm.RoutePolyline, from vdm.Station, to vdm.Station) (vdm.RoutePolyline, int, int, bool) {
	var bestLoop vdm.RoutePolyline
	bestStart, bestEnd := -1, -1
	bestDistance := 0.0
	found := false

	maxDistance := config.MaxStationDistanceKm
	if maxDistance <= 0 {
		maxDistance = endpointTiers[0]
	}

	for _, polyline := range polylines {
		if len(polyline.Points) < 3 {
			continue
		}
		if !matchesHints(polyline, config.Refs, config.NameHints) {
			continue
		}

		startIndex, startDistance := polyline.NearestPointIndex(from.Coordinate())
		endIndex, endDistance := polyline.NearestPointIndex(to.Coordinate())

		if startDistance > maxDistance || endDistance > maxDistance {
			continue
		}
		if startIndex == endIndex {
			continue
		}

		combined := startDistance + endDistance
		if !found || combined < bestDistance {
			bestLoop = polyline
			bestStart, bestEnd = startIndex, endIndex
			bestDistance = combined
			found = true
		}
	}

	return bestLoop, bestStart, bestEnd, found
}

func matchesHints(polyline vdm.RoutePolyline, refs []string, nameHints []string) bool {
	if util.ContainsString(refs, polyline.Ref) {
		return true
	}

	return containsAny(strings.ToLower(polyline.Name), nameHints)
}

func containsAny(lowerName string, hints []string) bool {
	for _, hint := range hints {
		if strings.Contains(lowerName, strings.ToLower(hint)) {
			return true
		}
	}

	return false
}

// walkForward follows the ring in traced direction from startIndex to
// endIndex, wrapping past the closing vertex when the destination sits
// behind the start.
func walkForward(points []vdm.Coordinate, startIndex int, endIndex int) []vdm.Coordinate {
	if startIndex <= endIndex {
		segment := make([]vdm.Coordinate, endIndex-startIndex+1)
		copy(segment, points[startIndex:endIndex+1])
		return segment
	}

	lastIndex := len(points) - 1
	// Closed rings repeat the first vertex at the end, skip the duplicate
	// when wrapping.
	if points[0] == points[lastIndex] {
		lastIndex -= 1
	}

	segment := make([]vdm.Coordinate, 0, (lastIndex-startIndex+1)+(endIndex+1))
	segment = append(segment, points[startIndex:lastIndex+1]...)
	segment = append(segment, points[:endIndex+1]...)

	return segment
}

// shorterArc returns whichever way around the ring is strictly shorter,
// preferring the traced direction on a tie.
func shorterArc(points []vdm.Coordinate, startIndex int, endIndex int) []vdm.Coordinate {
	forward := walkForward(points, startIndex, endIndex)
	backward := walkForward(points, endIndex, startIndex)

	if vdm.PathLengthKm(backward) < vdm.PathLengthKm(forward) {
		reversed := make([]vdm.Coordinate, 0, len(backward))
		for index := len(backward) - 1; index >= 0; index-- {
			reversed = append(reversed, backward[index])
		}

		return reversed
	}

	return forward
}
