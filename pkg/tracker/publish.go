package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vesselsim/vesselsim/pkg/redis_client"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

// positionsMessage is the wire format published on every tick.
type positionsMessage struct {
	Lake      string                 `json:"lake"`
	Timestamp time.Time              `json:"timestamp"`
	Vessels   []vdm.PositionSnapshot `json:"vessels"`
}

func (t *LakeTracker) publish(ctx context.Context, now time.Time, snapshots []vdm.PositionSnapshot) {
	if t.Publisher == nil {
		log.Debug().
			Str("lake", t.Lake.ID).
			Int("vessels", len(snapshots)).
			Msg("No publisher configured, dropping tick")
		return
	}

	payload, err := json.Marshal(positionsMessage{
		Lake:      t.Lake.ID,
		Timestamp: now,
		Vessels:   snapshots,
	})
	if err != nil {
		log.Error().Err(err).Str("lake", t.Lake.ID).Msg("Failed to marshal positions")
		return
	}

	channel := fmt.Sprintf("vesselsim.positions.%s", t.Lake.ID)
	if err := t.Publisher.Publish(ctx, channel, payload); err != nil {
		log.Error().Err(err).Str("lake", t.Lake.ID).Msg("Failed to publish positions")
	}
}

// RedisPublisher publishes tick payloads on redis pub/sub channels.
type RedisPublisher struct{}

func (RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return redis_client.Client.Publish(ctx, channel, payload).Err()
}
