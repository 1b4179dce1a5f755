package main

import (
	"log"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Quick inspector for raw lake geometry exports - prints what each feature
// is before it gets wired into a lake definition file.
func main() {
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.Fatalf("Error decoding feature collection: %s", err)
	}

	for _, feature := range collection.Features {
		name := feature.Properties.MustString("name", "<unnamed>")

		switch geometry := feature.Geometry.(type) {
		case orb.Point:
			log.Println("Point", name, geometry.Lat(), geometry.Lon())
		case orb.LineString:
			log.Println("LineString", name, len(geometry), "points")
		case orb.MultiLineString:
			log.Println("MultiLineString", name, len(geometry), "parts")
			for _, line := range geometry {
				log.Println("  part with", len(line), "points")
			}
		default:
			log.Println("Other geometry", name)
		}
	}

	log.Println("Total features:", len(collection.Features))
}
