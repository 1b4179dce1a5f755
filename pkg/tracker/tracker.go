// Package tracker runs the per-lake engine loop: periodically reload the
// day's journey segments and tick out interpolated vessel positions.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/vesselsim/vesselsim/pkg/geometry"
	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/position"
	"github.com/vesselsim/vesselsim/pkg/routematch"
	"github.com/vesselsim/vesselsim/pkg/segments"
	"github.com/vesselsim/vesselsim/pkg/transportapi"
	"github.com/vesselsim/vesselsim/pkg/util"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

const (
	DefaultTickInterval   = 2 * time.Second
	DefaultReloadInterval = 30 * time.Minute
)

// Publisher pushes a tick's position snapshots somewhere, redis pub/sub in
// production. Nil publisher means positions are computed and dropped, which
// is still useful for archival-only runs.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// LakeTracker owns the full pipeline for one lake. Reload and Tick never
// run concurrently with themselves; the segment list swap is the only
// shared state and sits behind a mutex.
type LakeTracker struct {
	Lake *lakes.Lake

	Schedule     *transportapi.Client
	Resolver     segments.NameResolver
	Geometry     *geometry.Store
	Matcher      *routematch.Matcher
	Interpolator *position.Interpolator
	Clock        position.Clock

	TickInterval   time.Duration
	ReloadInterval time.Duration

	Publisher       Publisher
	ArchiveSegments bool

	mutex         sync.RWMutex
	segments      []vdm.JourneySegment
	lastReloadKey string
}

// Reload fetches the day's stationboards, rebuilds every journey segment
// and swaps the active set wholesale. A reload for a new service day forces
// fresh stationboards; otherwise the schedule cache absorbs the refetch.
// The last completed reload always wins.
func (t *LakeTracker) Reload(ctx context.Context, force bool) error {
	now := t.Clock.Now()
	date := util.DateKey(now)
	reloadKey := fmt.Sprintf("%s|%s|departure", t.Lake.ID, date)

	if !force && reloadKey != t.currentReloadKey() && t.currentReloadKey() != "" {
		// New service day, yesterday's cached boards are useless.
		force = true
	}

	polylines, err := t.Geometry.LoadPolylines(ctx, t.Lake)
	if err != nil {
		log.Warn().Err(err).Str("lake", t.Lake.ID).Msg("Failed to load route geometry, falling back to straight lines")
		polylines = nil
	}

	derivedStops, err := t.Geometry.LoadStops(ctx, t.Lake)
	if err != nil {
		derivedStops = nil
	}
	stations := lakes.MergeStations(t.Lake.CuratedStations(), derivedStops)

	schedules, err := t.Schedule.FetchAllStations(ctx, t.Lake.StationNames(), date, "00:00", force)
	if err != nil {
		return fmt.Errorf("reload %s: %w", reloadKey, err)
	}

	builder := segments.NewBuilder(t.Resolver, t.Matcher)
	built := builder.Build(ctx, t.Lake, polylines, stations, schedules, date)

	t.mutex.Lock()
	t.segments = built
	t.lastReloadKey = reloadKey
	t.mutex.Unlock()

	log.Info().
		Str("lake", t.Lake.ID).
		Str("reloadkey", reloadKey).
		Int("segments", len(built)).
		Msg("Reloaded journey segments")

	if t.ArchiveSegments {
		archiveSegments(t.Lake.ID, built)
	}

	return nil
}

// Tick computes a snapshot for every active segment and publishes the
// resolved vessel list.
func (t *LakeTracker) Tick(ctx context.Context) {
	now := t.Clock.Now()
	active := t.currentSegments()

	snapshotPool := pool.NewWithResults[*vdm.PositionSnapshot]()
	for _, segment := range active {
		snapshotPool.Go(func() *vdm.PositionSnapshot {
			snapshot, visible := t.Interpolator.PositionAt(segment, now)
			if !visible {
				return nil
			}

			return &snapshot
		})
	}

	var snapshots []vdm.PositionSnapshot
	for _, snapshot := range snapshotPool.Wait() {
		if snapshot != nil {
			snapshots = append(snapshots, *snapshot)
		}
	}

	snapshots = position.ResolveOverlaps(now, snapshots)

	t.publish(ctx, now, snapshots)
}

// Run drives the reload and tick loops until the context is cancelled.
// Timers are reset after each pass completes, so a slow reload can never
// overlap the next one.
func (t *LakeTracker) Run(ctx context.Context) {
	log.Info().
		Str("lake", t.Lake.ID).
		Dur("tick", t.TickInterval).
		Dur("reload", t.ReloadInterval).
		Msg("Starting lake tracker")

	if err := t.Reload(ctx, false); err != nil {
		log.Error().Err(err).Str("lake", t.Lake.ID).Msg("Initial reload failed")
	}

	reloadTimer := time.NewTimer(t.ReloadInterval)
	tickTimer := time.NewTimer(t.TickInterval)
	defer reloadTimer.Stop()
	defer tickTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-reloadTimer.C:
			if err := t.Reload(ctx, false); err != nil {
				log.Error().Err(err).Str("lake", t.Lake.ID).Msg("Reload failed, keeping previous segments")
			}
			reloadTimer.Reset(t.ReloadInterval)
		case <-tickTimer.C:
			t.Tick(ctx)
			tickTimer.Reset(t.TickInterval)
		}
	}
}

func (t *LakeTracker) currentSegments() []vdm.JourneySegment {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.segments
}

func (t *LakeTracker) currentReloadKey() string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.lastReloadKey
}
