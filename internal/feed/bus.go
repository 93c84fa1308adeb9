package feed

import (
	"context"
	"sync"
)

// Bus is the transport underneath a Feed: publish a payload to a named
// channel and receive everything published on it afterwards. Delivery is
// at-most-once and in publish order per channel; there is no redelivery.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe opens a receive channel and returns a stop function that
	// releases it. The stop function is safe to call more than once.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// subscriberBuffer bounds how far a slow consumer may lag before events
// are dropped.
const subscriberBuffer = 16

// MemoryBus is an in-process Bus used in tests and single-node setups.
type MemoryBus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan []byte
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[int]chan []byte)}
}

// Publish delivers payload to every current subscriber of channel. A
// subscriber whose buffer is full misses the event rather than blocking
// the publisher.
func (b *MemoryBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe registers a new receiver on channel.
func (b *MemoryBus) Subscribe(_ context.Context, channel string) (<-chan []byte, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan []byte, subscriberBuffer)
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]chan []byte)
	}
	b.subs[channel][id] = ch

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[channel], id)
			close(ch)
		})
	}
	return ch, stop, nil
}
