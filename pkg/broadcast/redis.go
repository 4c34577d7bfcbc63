package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const publishTimeout = 2 * time.Second

// RedisRelay republishes events on a redis channel so other processes can
// observe sessions owned by this one.
type RedisRelay struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedisRelay(client *redis.Client, channel string, log zerolog.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		log:     log.With().Str("component", "redis_relay").Logger(),
	}
}

// Publish sends asynchronously; failures are logged and dropped.
func (r *RedisRelay) Publish(evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		r.log.Error().Err(err).Str("event", evt.Kind).Msg("failed to encode event")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
			r.log.Warn().Err(err).Str("event", evt.Kind).Msg("failed to relay event")
		}
	}()
}

// Forward feeds events received on the channel into hub until ctx ends.
// Events published by this process come back too, so the hub must not also
// be published to directly.
func (r *RedisRelay) Forward(ctx context.Context, hub *Hub) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				r.log.Debug().Err(err).Msg("ignoring malformed relay payload")
				continue
			}
			hub.Publish(evt)
		}
	}
}
