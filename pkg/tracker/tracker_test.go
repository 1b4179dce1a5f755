package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vesselsim/vesselsim/pkg/cachestore"
	"github.com/vesselsim/vesselsim/pkg/geometry"
	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/position"
	"github.com/vesselsim/vesselsim/pkg/routematch"
	"github.com/vesselsim/vesselsim/pkg/transportapi"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordingPublisher struct {
	mutex    sync.Mutex
	channels []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)

	return nil
}

const trackerTestLakeYaml = `id: testsee
name: Testsee
geojson_path: testsee.geojson
stations:
  - name: Alpenquai
    latitude: 47.0
    longitude: 8.0
  - name: Buchenhorn
    latitude: 47.0
    longitude: 8.1
`

const trackerTestGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"@id": "way/1", "name": "Alpenquai - Buchenhorn"},
			"geometry": {
				"type": "LineString",
				"coordinates": [[8.0, 47.0], [8.05, 47.01], [8.1, 47.0]]
			}
		}
	]
}`

func stationboardFor(now time.Time) string {
	departure := now.Add(-10 * time.Minute).Format("2006-01-02T15:04:05-0700")
	arrival := now.Add(20 * time.Minute).Format("2006-01-02T15:04:05-0700")

	return fmt.Sprintf(`{
		"stationboard": [
			{
				"stop": {"departure": %q},
				"name": "BAT 57",
				"number": "57",
				"to": "Buchenhorn",
				"passList": [
					{"station": null, "departure": %q},
					{"station": {"id": "2", "name": "Buchenhorn"}, "arrival": %q}
				]
			}
		]
	}`, departure, departure, arrival)
}

func newTestTracker(t *testing.T, now time.Time) (*LakeTracker, *recordingPublisher) {
	t.Helper()

	directory := t.TempDir()
	if err := os.WriteFile(filepath.Join(directory, "testsee.yaml"), []byte(trackerTestLakeYaml), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(directory, "testsee.geojson"), []byte(trackerTestGeoJSON), 0644); err != nil {
		t.Fatal(err)
	}

	registry, err := lakes.LoadDirectory(directory)
	if err != nil {
		t.Fatal(err)
	}
	lake, _ := registry.Get("testsee")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("station") == "Alpenquai" {
			fmt.Fprint(w, stationboardFor(now))
			return
		}

		fmt.Fprint(w, `{"stationboard": []}`)
	}))
	t.Cleanup(server.Close)

	scheduleClient := transportapi.NewClient(cachestore.NewMemory[[]vdm.ScheduleEntry](time.Hour, 64))
	scheduleClient.BaseURL = server.URL
	scheduleClient.StaggerDelay = 0
	scheduleClient.RetryInterval = time.Millisecond

	geometryStore := geometry.NewStore(registry,
		cachestore.NewMemory[[]vdm.RoutePolyline](time.Hour, 8),
		cachestore.NewMemory[[]vdm.Station](time.Hour, 8))

	publisher := &recordingPublisher{}

	return &LakeTracker{
		Lake: lake,

		Schedule:     scheduleClient,
		Geometry:     geometryStore,
		Matcher:      routematch.NewMatcher(registry),
		Interpolator: position.NewInterpolator(),
		Clock:        fixedClock{now: now},

		TickInterval:   time.Second,
		ReloadInterval: time.Minute,

		Publisher: publisher,
	}, publisher
}

func TestReloadBuildsSegments(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	lakeTracker, _ := newTestTracker(t, now)

	if err := lakeTracker.Reload(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	built := lakeTracker.currentSegments()
	if len(built) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(built))
	}
	if built[0].From.Name != "Alpenquai" || built[0].To.Name != "Buchenhorn" {
		t.Errorf("segment endpoints wrong: %s -> %s", built[0].From.Name, built[0].To.Name)
	}
	if len(built[0].MatchedPolyline) == 0 {
		t.Error("segment should carry the matched route geometry")
	}
}

func TestTickPublishesUnderwayVessel(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	lakeTracker, publisher := newTestTracker(t, now)

	if err := lakeTracker.Reload(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	lakeTracker.Tick(context.Background())

	publisher.mutex.Lock()
	defer publisher.mutex.Unlock()

	if len(publisher.payloads) != 1 {
		t.Fatalf("expected 1 published tick, got %d", len(publisher.payloads))
	}
	if publisher.channels[0] != "vesselsim.positions.testsee" {
		t.Errorf("unexpected channel %q", publisher.channels[0])
	}

	var message positionsMessage
	if err := json.Unmarshal(publisher.payloads[0], &message); err != nil {
		t.Fatal(err)
	}

	if message.Lake != "testsee" {
		t.Errorf("unexpected lake %q", message.Lake)
	}
	if len(message.Vessels) != 1 {
		t.Fatalf("expected 1 vessel underway, got %d", len(message.Vessels))
	}

	vessel := message.Vessels[0]
	if vessel.Status != vdm.VesselStatusDriving {
		t.Errorf("vessel 10 minutes into a 30 minute leg should be driving, got %s", vessel.Status)
	}
	if vessel.Name != "Ship (course 57)" {
		t.Errorf("unexpected vessel name %q", vessel.Name)
	}
}

func TestReloadFailureSurfacesWhenAllStationsFail(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	lakeTracker, _ := newTestTracker(t, now)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()
	lakeTracker.Schedule.BaseURL = broken.URL

	if err := lakeTracker.Reload(context.Background(), false); err == nil {
		t.Error("expected an error when every stationboard fails")
	}
}
