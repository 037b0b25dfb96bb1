package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster fans events out through Redis pub/sub so that every API
// instance can reach its own SSE subscribers.
type RedisBroadcaster struct {
	rdb *redis.Client
}

// NewRedisBroadcaster connects and pings Redis.
func NewRedisBroadcaster(ctx context.Context, addr, password string) (*RedisBroadcaster, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisBroadcaster{rdb: rdb}, nil
}

func (b *RedisBroadcaster) Publish(ctx context.Context, userID string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, room(userID), payload).Err()
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error) {
	sub := b.rdb.Subscribe(ctx, room(userID))
	// Wait for the subscription confirmation so no event published right
	// after Subscribe returns is lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan Event, subscriberBuffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev, err := decodeEvent(msg.Payload)
				if err != nil {
					slog.Warn("dropping malformed realtime event", "channel", msg.Channel, "err", err)
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}

func (b *RedisBroadcaster) Close() error {
	return b.rdb.Close()
}

func decodeEvent(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, err
	}
	if ev.Name == "" {
		return Event{}, fmt.Errorf("event without name")
	}
	return ev, nil
}
