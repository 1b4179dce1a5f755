package lakes

import (
	"os"
	"path/filepath"
	"testing"
)

const registryTestYaml = `id: greifensee
name: Greifensee
geojson_path: geojson/greifensee.geojson
stations:
  - name: Maur
    latitude: 47.3402
    longitude: 8.6782
  - name: Niederuster
    latitude: 47.3565
    longitude: 8.6969
loop_route:
  refs: ["SGG"]
  max_station_distance_km: 0.5
  direct_pairs:
    - a: Uster
      b: Maur
---
id: aegerisee
name: Ägerisee
geojson_path: /somewhere/absolute/aegerisee.geojson
stations:
  - name: Unterägeri Seeplatz
    latitude: 47.1365
    longitude: 8.5855
`

func TestLoadDirectory(t *testing.T) {
	directory := t.TempDir()
	if err := os.WriteFile(filepath.Join(directory, "lakes.yaml"), []byte(registryTestYaml), 0644); err != nil {
		t.Fatal(err)
	}

	registry, err := LoadDirectory(directory)
	if err != nil {
		t.Fatal(err)
	}

	if len(registry.All()) != 2 {
		t.Fatalf("expected 2 lakes, got %d", len(registry.All()))
	}

	greifensee, found := registry.Get("greifensee")
	if !found {
		t.Fatal("greifensee not loaded")
	}
	if len(greifensee.Stations) != 2 {
		t.Errorf("expected 2 stations, got %d", len(greifensee.Stations))
	}
	if greifensee.LoopRoute == nil {
		t.Fatal("loop route config missing")
	}
	if len(greifensee.LoopRoute.DirectPairs) != 1 {
		t.Errorf("expected 1 direct pair, got %d", len(greifensee.LoopRoute.DirectPairs))
	}

	if _, found := registry.Get("bodensee"); found {
		t.Error("unexpected lake in registry")
	}
}

func TestGeometryPath(t *testing.T) {
	directory := t.TempDir()
	if err := os.WriteFile(filepath.Join(directory, "lakes.yaml"), []byte(registryTestYaml), 0644); err != nil {
		t.Fatal(err)
	}

	registry, err := LoadDirectory(directory)
	if err != nil {
		t.Fatal(err)
	}

	greifensee, _ := registry.Get("greifensee")
	expected := filepath.Join(directory, "geojson/greifensee.geojson")
	if got := registry.GeometryPath(greifensee); got != expected {
		t.Errorf("relative path got %q, expected %q", got, expected)
	}

	aegerisee, _ := registry.Get("aegerisee")
	if got := registry.GeometryPath(aegerisee); got != "/somewhere/absolute/aegerisee.geojson" {
		t.Errorf("absolute path got %q", got)
	}
}
