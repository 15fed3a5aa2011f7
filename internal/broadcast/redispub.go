package broadcast

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/studycrew/presence/internal/domain"
)

// RedisPublisher publishes through Redis pub/sub so every service
// instance behind the gateway sees the message.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %v: %w", channel, err, domain.ErrStoreUnavailable)
	}
	return nil
}

// Delivery is one message received from a subscription.
type Delivery struct {
	Channel string
	Payload []byte
}

// RedisSubscriber bridges the instance into the shared pub/sub bus.
// It pattern-subscribes to all presence channels and hands deliveries
// to the local hub for routing to this instance's connections.
type RedisSubscriber struct {
	rdb *redis.Client
}

func NewRedisSubscriber(rdb *redis.Client) *RedisSubscriber {
	return &RedisSubscriber{rdb: rdb}
}

// Run blocks until ctx is done, forwarding every delivery to handle.
func (s *RedisSubscriber) Run(ctx context.Context, handle func(Delivery)) {
	pubsub := s.rdb.PSubscribe(ctx, roomChannelPrefix+"*", userChannelPrefix+"*")
	defer pubsub.Close()

	log.Info().Str("module", "broadcast.redis").Msg("subscribed to presence channels")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				log.Warn().Str("module", "broadcast.redis").Msg("subscription channel closed")
				return
			}
			handle(Delivery{Channel: msg.Channel, Payload: []byte(msg.Payload)})
		}
	}
}
