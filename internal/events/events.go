// Package events carries mutation fanout over Redis: change events
// for websocket delivery and invalidation signals for cached views.
package events

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"pulse/internal/websocket"
	"pulse/pkg/logging"
	"pulse/pkg/models"
	"pulse/pkg/redis"
)

const (
	ChangeChannel     = "pulse:changes"
	InvalidateChannel = "pulse:invalidate"
)

// Views named by invalidation events
const (
	ViewFeed     = "feed"
	ViewProfile  = "profile"
	ViewTrending = "trending"
)

// Publisher is what the handler layer sees. Both methods are
// best-effort at the call sites: a publish failure never fails the
// mutation that produced it.
type Publisher interface {
	PublishChange(ctx context.Context, event models.ChangeEvent) error
	PublishInvalidation(ctx context.Context, event models.InvalidationEvent) error
}

// RedisPublisher publishes events through Redis pub/sub
type RedisPublisher struct {
	changes    *redis.TypedPubSub[models.ChangeEvent]
	invalidate *redis.TypedPubSub[models.InvalidationEvent]
}

func NewRedisPublisher(client goredis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{
		changes:    redis.NewTypedPubSub[models.ChangeEvent](client),
		invalidate: redis.NewTypedPubSub[models.InvalidationEvent](client),
	}
}

func (p *RedisPublisher) PublishChange(ctx context.Context, event models.ChangeEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return p.changes.Publish(ctx, ChangeChannel, event)
}

func (p *RedisPublisher) PublishInvalidation(ctx context.Context, event models.InvalidationEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return p.invalidate.Publish(ctx, InvalidateChannel, event)
}

// RunBridge subscribes to the change channel and forwards every event
// to the websocket hub. Blocks until ctx is cancelled.
func RunBridge(ctx context.Context, client goredis.UniversalClient, hub *websocket.Hub, logger logging.Logger) error {
	sub := redis.NewTypedPubSub[models.ChangeEvent](client)
	logger.WithField("channel", ChangeChannel).Info("Starting realtime bridge")

	return sub.Subscribe(ctx, ChangeChannel, func(ev models.ChangeEvent) {
		data := map[string]interface{}{
			"post_id":  ev.PostID,
			"actor_id": ev.ActorID,
		}
		if len(ev.Payload) > 0 {
			data["payload"] = ev.Payload
		}
		hub.BroadcastEvent(ev.Type, ev.Channel, data)
	})
}
