package feed

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus is a Bus backed by redis pub/sub, used when more than one
// process shares the change feed.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus wraps an existing redis client.
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

// Publish sends payload on channel.
func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a redis subscription. The initial handshake is awaited so
// a broken connection surfaces as an error here instead of as a channel
// that never delivers.
func (b *RedisBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	ps := b.client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}

	out := make(chan []byte, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			out <- []byte(msg.Payload)
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = ps.Close()
		})
	}
	return out, stop, nil
}
