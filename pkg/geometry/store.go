package geometry

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/vesselsim/vesselsim/pkg/cachestore"
	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// Store loads ferry route geometry and stop locations from per-lake GeoJSON
// exports and keeps the parsed results cached. Geometry files change rarely,
// so a long TTL is fine.
type Store struct {
	Registry *lakes.Registry

	PolylineCache cachestore.Cache[[]vdm.RoutePolyline]
	StopCache     cachestore.Cache[[]vdm.Station]
}

func NewStore(registry *lakes.Registry, polylineCache cachestore.Cache[[]vdm.RoutePolyline], stopCache cachestore.Cache[[]vdm.Station]) *Store {
	return &Store{
		Registry:      registry,
		PolylineCache: polylineCache,
		StopCache:     stopCache,
	}
}

// LoadPolylines returns every route polyline for the lake. MultiLineString
// features are split into independently matchable parts.
func (s *Store) LoadPolylines(ctx context.Context, lake *lakes.Lake) ([]vdm.RoutePolyline, error) {
	if polylines, ok := s.PolylineCache.Get(ctx, lake.ID); ok {
		return polylines, nil
	}

	collection, err := s.readCollection(lake)
	if err != nil {
		return nil, err
	}

	var polylines []vdm.RoutePolyline
	for index, feature := range collection.Features {
		featureID := featureIdentifier(feature, index)
		name := featureName(feature, featureID)
		ref := feature.Properties.MustString("ref", "")
		kind := feature.Properties.MustString("route", "ferry")

		switch geometry := feature.Geometry.(type) {
		case orb.LineString:
			polylines = append(polylines, vdm.RoutePolyline{
				ID:     featureID,
				Name:   name,
				Ref:    ref,
				Kind:   kind,
				Points: convertLine(geometry),
			})
		case orb.MultiLineString:
			for partIndex, line := range geometry {
				partName := name
				partID := featureID
				if len(geometry) > 1 {
					partName = fmt.Sprintf("%s (part %d)", name, partIndex+1)
					partID = fmt.Sprintf("%s/%d", featureID, partIndex+1)
				}

				polylines = append(polylines, vdm.RoutePolyline{
					ID:     partID,
					Name:   partName,
					Ref:    ref,
					Kind:   kind,
					Points: convertLine(line),
				})
			}
		}
	}

	log.Debug().Str("lake", lake.ID).Int("polylines", len(polylines)).Msg("Loaded route geometry")

	if len(polylines) > 0 {
		s.PolylineCache.Set(ctx, lake.ID, polylines)
	}

	return polylines, nil
}

// LoadStops returns the ferry stops found in the lake's geometry file.
// These supplement the curated station list with coordinates for stops the
// configuration does not know about.
func (s *Store) LoadStops(ctx context.Context, lake *lakes.Lake) ([]vdm.Station, error) {
	if stops, ok := s.StopCache.Get(ctx, lake.ID); ok {
		return stops, nil
	}

	collection, err := s.readCollection(lake)
	if err != nil {
		return nil, err
	}

	var stops []vdm.Station
	for _, feature := range collection.Features {
		point, ok := feature.Geometry.(orb.Point)
		if !ok {
			continue
		}

		amenity := feature.Properties.MustString("amenity", "")
		ferry := feature.Properties.MustString("ferry", "")
		if amenity != "ferry_terminal" && ferry != "yes" {
			continue
		}

		name := feature.Properties.MustString("name", "")
		if name == "" {
			continue
		}

		stops = append(stops, vdm.Station{
			Name:        name,
			Latitude:    point.Lat(),
			Longitude:   point.Lon(),
			ExternalRef: feature.Properties.MustString("uic_ref", ""),
		})
	}

	if len(stops) > 0 {
		s.StopCache.Set(ctx, lake.ID, stops)
	}

	return stops, nil
}

func (s *Store) readCollection(lake *lakes.Lake) (*geojson.FeatureCollection, error) {
	path := s.Registry.GeometryPath(lake)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geometry for lake %s: %w", lake.ID, err)
	}

	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geometry for lake %s: %w", lake.ID, err)
	}

	return collection, nil
}

// featureIdentifier prefers the OSM export's @id property, trimming the
// element type prefix.
func featureIdentifier(feature *geojson.Feature, index int) string {
	id := feature.Properties.MustString("@id", "")
	id = strings.TrimPrefix(id, "relation/")
	id = strings.TrimPrefix(id, "way/")

	if id == "" {
		id = fmt.Sprintf("feature-%d", index)
	}

	return id
}

func featureName(feature *geojson.Feature, featureID string) string {
	if name := feature.Properties.MustString("name", ""); name != "" {
		return name
	}
	if ref := feature.Properties.MustString("ref", ""); ref != "" {
		return ref
	}
	if seamark := feature.Properties.MustString("seamark:name", ""); seamark != "" {
		return seamark
	}

	return fmt.Sprintf("Route %s", featureID)
}

func convertLine(line orb.LineString) []vdm.Coordinate {
	points := make([]vdm.Coordinate, 0, len(line))
	for _, point := range line {
		points = append(points, vdm.Coordinate{
			Latitude:  point.Lat(),
			Longitude: point.Lon(),
		})
	}

	return points
}
