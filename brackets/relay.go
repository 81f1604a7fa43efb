package brackets

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const relayChannel = "padel:realtime"

type relayEnvelope struct {
	Room    string          `json:"room"`
	Message json.RawMessage `json:"message"`
}

// RedisRelay fans events out to every API instance: BroadcastToRoom publishes to
// Redis, and Run forwards everything received on the channel into the local hub.
type RedisRelay struct {
	rdb     *redis.Client
	local   Notifier
	logger  *slog.Logger
	timeout time.Duration
}

var _ Notifier = (*RedisRelay)(nil)

func NewRedisRelay(redisURL string, local Notifier, logger *slog.Logger) (*RedisRelay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisRelay{rdb: rdb, local: local, logger: logger, timeout: 2 * time.Second}, nil
}

func (r *RedisRelay) BroadcastToRoom(roomID string, message interface{}) {
	raw, err := json.Marshal(message)
	if err != nil {
		r.logger.Error("Relay: failed to marshal message", slog.String("room", roomID), slog.Any("error", err))
		return
	}
	payload, err := json.Marshal(relayEnvelope{Room: roomID, Message: raw})
	if err != nil {
		r.logger.Error("Relay: failed to marshal envelope", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.rdb.Publish(ctx, relayChannel, payload).Err(); err != nil {
		// Redis недоступен: доставляем хотя бы локальным клиентам.
		r.logger.Warn("Relay: publish failed, delivering locally", slog.String("room", roomID), slog.Any("error", err))
		r.local.BroadcastToRoom(roomID, json.RawMessage(raw))
	}
}

// Run relays published events into the local hub until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.rdb.Subscribe(ctx, relayChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.logger.Warn("Relay: malformed message", slog.Any("error", err))
				continue
			}
			r.local.BroadcastToRoom(env.Room, env.Message)
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.rdb.Close()
}
