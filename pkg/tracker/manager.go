package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vesselsim/vesselsim/pkg/cachestore"
	"github.com/vesselsim/vesselsim/pkg/geometry"
	"github.com/vesselsim/vesselsim/pkg/identity"
	"github.com/vesselsim/vesselsim/pkg/lakes"
	"github.com/vesselsim/vesselsim/pkg/position"
	"github.com/vesselsim/vesselsim/pkg/redis_client"
	"github.com/vesselsim/vesselsim/pkg/routematch"
	"github.com/vesselsim/vesselsim/pkg/segments"
	"github.com/vesselsim/vesselsim/pkg/transportapi"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

const (
	scheduleCacheTTL    = 6 * time.Hour
	deploymentsCacheTTL = 12 * time.Hour
	resolvedNameTTL     = time.Hour
	geometryCacheTTL    = 24 * time.Hour
)

// TrackerManager spins up one LakeTracker per registered lake, sharing the
// schedule client, geometry store and matcher between them.
type TrackerManager struct {
	Registry *lakes.Registry

	Clock     position.Clock
	Publisher Publisher

	DeploymentsURL  string
	ArchiveSegments bool

	TickInterval   time.Duration
	ReloadInterval time.Duration
}

func (m *TrackerManager) Run(ctx context.Context) {
	log.Info().Int("lakes", len(m.Registry.All())).Msg("Starting vessel position trackers")

	scheduleClient := transportapi.NewClient(
		newCache[[]vdm.ScheduleEntry]("schedule", scheduleCacheTTL))

	geometryStore := geometry.NewStore(m.Registry,
		newCache[[]vdm.RoutePolyline]("polylines", geometryCacheTTL),
		newCache[[]vdm.Station]("stops", geometryCacheTTL))

	matcher := routematch.NewMatcher(m.Registry)
	interpolator := position.NewInterpolator()

	var resolver segments.NameResolver
	if m.DeploymentsURL != "" {
		resolver = identity.NewResolver(m.DeploymentsURL,
			newCache[[]identity.DailyDeployment]("deployments", deploymentsCacheTTL),
			newCache[string]("shipnames", resolvedNameTTL))
	}

	for _, lake := range m.Registry.All() {
		lakeTracker := &LakeTracker{
			Lake: lake,

			Schedule:     scheduleClient,
			Geometry:     geometryStore,
			Matcher:      matcher,
			Interpolator: interpolator,
			Clock:        m.Clock,

			TickInterval:   m.TickInterval,
			ReloadInterval: m.ReloadInterval,

			Publisher:       m.Publisher,
			ArchiveSegments: m.ArchiveSegments,
		}

		if lake.HasShipNames {
			lakeTracker.Resolver = resolver
		}

		log.Info().
			Str("lake", lake.ID).
			Int("stations", len(lake.Stations)).
			Bool("shipnames", lake.HasShipNames).
			Bool("loop", lake.LoopRoute != nil).
			Msg("Registered lake")

		go lakeTracker.Run(ctx)
	}
}

// newCache prefers redis when connected so several instances share one
// schedule cache, falling back to process-local memory.
func newCache[T any](prefix string, ttl time.Duration) cachestore.Cache[T] {
	if redis_client.Client != nil {
		return cachestore.NewRedis[T](redis_client.Client, prefix, ttl)
	}

	return cachestore.NewMemory[T](ttl, 4096)
}
