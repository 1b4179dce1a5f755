package routematch

import (
	"strings"

	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// Weights tune the polyline scoring. Lower scores win, bonuses subtract.
type Weights struct {
	// EndpointDistance multiplies the summed station-to-polyline distances
	// in kilometres.
	EndpointDistance float64

	// LengthPenalty multiplies the extracted segment length, preferring the
	// shortest plausible stretch between two stations.
	LengthPenalty float64

	// CourseNumberBonus applies when the polyline carries the scheduled
	// course number in its ref or name.
	CourseNumberBonus float64

	// OrderedNameBonus applies when the polyline name mentions both station
	// names in travel order, UnorderedNameBonus when reversed and
	// SingleNameBonus when only one appears.
	OrderedNameBonus   float64
	UnorderedNameBonus float64
	SingleNameBonus    float64
}

func DefaultWeights() Weights {
	return Weights{
		EndpointDistance:   100,
		LengthPenalty:      5,
		CourseNumberBonus:  10000,
		OrderedNameBonus:   5000,
		UnorderedNameBonus: 3000,
		SingleNameBonus:    500,
	}
}

// endpointTiers are the acceptable station-to-polyline distances in
// kilometres. A candidate in a tighter tier always beats one in a looser
// tier, independent of score.
var endpointTiers = []float64{0.8, 1.5, 5.0}

func endpointTier(distanceKm float64) int {
	for tier, limit := range endpointTiers {
		if distanceKm <= limit {
			return tier
		}
	}

	return -1
}

type candidate struct {
	points []vdm.Coordinate
	tier   int
	score  float64
}

// matchPointToPoint scores every polyline by how close it passes both
// stations and extracts the stretch between the two nearest vertices,
// reversed if the polyline is digitised against travel direction.
func (m *Matcher) matchPointToPoint(lake *lakes.Lake, polylines []vdm.RoutePolyline, from vdm.Station, to vdm.Station, courseNumber string) ([]vdm.Coordinate, error) {
	best, found := bestCandidate(lake, polylines, from, to, courseNumber, m.Weights)
	if !found {
		return nil, ErrNoMatch
	}

	return best.points, nil
}

func bestCandidate(lake *lakes.Lake, polylines []vdm.RoutePolyline, from vdm.Station, to vdm.Station, courseNumber string, weights Weights) (candidate, bool) {
	var best candidate
	found := false

	for _, polyline := range polylines {
		if len(polyline.Points) < 2 {
			continue
		}

		startIndex, startDistance := polyline.NearestPointIndex(from.Coordinate())
		endIndex, endDistance := polyline.NearestPointIndex(to.Coordinate())

		if startIndex == endIndex {
			continue
		}

		tier := endpointTier(maxFloat(startDistance, endDistance))
		if tier < 0 {
			continue
		}

		points := extractSegment(polyline.Points, startIndex, endIndex)
		segmentLength := vdm.PathLengthKm(points)

		score := (startDistance+endDistance)*weights.EndpointDistance +
			segmentLength*weights.LengthPenalty -
			nameBonus(polyline, lake, from, to, courseNumber, weights)

		if !found || tier < best.tier || (tier == best.tier && score < best.score) {
			best = candidate{points: points, tier: tier, score: score}
			found = true
		}
	}

	return best, found
}

// extractSegment slices the polyline between two vertex indices inclusive,
// reversing when the travel direction runs against the digitised order.
func extractSegment(points []vdm.Coordinate, startIndex int, endIndex int) []vdm.Coordinate {
	if startIndex <= endIndex {
		segment := make([]vdm.Coordinate, endIndex-startIndex+1)
		copy(segment, points[startIndex:endIndex+1])
		return segment
	}

	segment := make([]vdm.Coordinate, 0, startIndex-endIndex+1)
	for index := startIndex; index >= endIndex; index-- {
		segment = append(segment, points[index])
	}

	return segment
}

func nameBonus(polyline vdm.RoutePolyline, lake *lakes.Lake, from vdm.Station, to vdm.Station, courseNumber string, weights Weights) float64 {
	bonus := 0.0
	lowerName := strings.ToLower(polyline.Name)

	if courseNumber != "" {
		if polyline.Ref == courseNumber || strings.Contains(lowerName, strings.ToLower(courseNumber)) {
			bonus += weights.CourseNumberBonus
		}
	}

	fromIndex := strings.Index(lowerName, strings.ToLower(from.Name))
	toIndex := strings.Index(lowerName, strings.ToLower(to.Name))

	switch {
	case fromIndex >= 0 && toIndex >= 0 && fromIndex < toIndex:
		bonus += weights.OrderedNameBonus
	case fromIndex >= 0 && toIndex >= 0:
		bonus += weights.UnorderedNameBonus
	case fromIndex >= 0 || toIndex >= 0:
		bonus += weights.SingleNameBonus
	}

	for _, rule := range lake.BonusRules {
		if rule.CourseNumber != "" && rule.CourseNumber != courseNumber {
			continue
		}

		hit := len(rule.NameContains) == 0
		for _, hint := range rule.NameContains {
			if strings.Contains(lowerName, strings.ToLower(hint)) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}

		bonus += rule.Bonus
	}

	return bonus
}

func maxFloat(a float64, b float64) float64 {
	if a > b {
		return a
	}

	return b
}
