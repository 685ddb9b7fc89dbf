// Package notify publishes relationship changes on the Redis notifications channel.
package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/trailback/backend/pkg/models"
)

const Channel = "notifications"

// Publisher delivers domain events. Failures are logged, never returned.
type Publisher interface {
	Publish(ctx context.Context, event models.Event)
}

// RedisPublisher publishes events as JSON on Channel.
type RedisPublisher struct {
	rdb    redis.UniversalClient
	logger zerolog.Logger
}

func NewRedisPublisher(rdb redis.UniversalClient, logger zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("encoding event")
		return
	}
	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Str("user_id", event.UserID).Msg("publishing event")
	}
}

// Nop drops every event. Used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, models.Event) {}

// New picks the Redis publisher when a client is available.
func New(rdb *redis.Client, logger zerolog.Logger) Publisher {
	if rdb == nil {
		return Nop{}
	}
	return NewRedisPublisher(rdb, logger)
}
