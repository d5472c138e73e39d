package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go-storefront/logger"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "user:"

// RedisRelay shares status changes between server instances. Publish sends
// the event to the user's Redis channel; Run relays every user channel into
// the local hub, so each instance reaches its own live connections.
type RedisRelay struct {
	client *redis.Client
	hub    *Hub
}

// NewRedisRelay creates a relay delivering into hub
func NewRedisRelay(client *redis.Client, hub *Hub) *RedisRelay {
	return &RedisRelay{client: client, hub: hub}
}

func (r *RedisRelay) Name() string { return "redis" }

func (r *RedisRelay) Publish(ctx context.Context, evt StatusChange) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.client.Publish(ctx, redisChannelPrefix+evt.UserID, payload).Err()
}

// Run relays until ctx is cancelled
func (r *RedisRelay) Run(ctx context.Context) error {
	log := logger.WithComponent("redis-relay")

	pubsub := r.client.PSubscribe(ctx, redisChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to user channels: %w", err)
	}
	log.Info().Msg("relaying user channels from Redis")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt StatusChange
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("discarding malformed event")
				continue
			}
			evt.UserID = strings.TrimPrefix(msg.Channel, redisChannelPrefix)
			r.hub.Publish(evt)
		}
	}
}
