package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func collect(ch chan []byte, n int, t *testing.T) [][]byte {
	t.Helper()
	out := make([][]byte, 0, n)
	for len(out) < n {
		select {
		case payload := <-ch:
			out = append(out, payload)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestMemoryBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	ch1, stop1, err := bus.Subscribe(ctx, "events")
	assert.NoError(t, err)
	defer stop1()
	ch2, stop2, err := bus.Subscribe(ctx, "events")
	assert.NoError(t, err)
	defer stop2()

	assert.NoError(t, bus.Publish(ctx, "events", []byte("hello")))

	assert.Equal(t, []byte("hello"), <-ch1)
	assert.Equal(t, []byte("hello"), <-ch2)
}

func TestMemoryBus_ChannelsAreIsolated(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	ch, stop, err := bus.Subscribe(ctx, "a")
	assert.NoError(t, err)
	defer stop()

	assert.NoError(t, bus.Publish(ctx, "b", []byte("elsewhere")))

	select {
	case payload := <-ch:
		t.Fatalf("received event %q from another channel", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_StopClosesReceiveChannel(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	ch, stop, err := bus.Subscribe(ctx, "events")
	assert.NoError(t, err)

	stop()
	stop() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// Publishing after stop must not panic on the closed channel.
	assert.NoError(t, bus.Publish(ctx, "events", []byte("late")))
}

func TestFeed_FanOut(t *testing.T) {
	bus := NewMemoryBus()
	f := New(bus, "events")
	ctx := context.Background()

	got1 := make(chan []byte, 8)
	got2 := make(chan []byte, 8)

	unsub1, err := f.Subscribe(ctx, func(p []byte) { got1 <- p })
	assert.NoError(t, err)
	defer unsub1()
	unsub2, err := f.Subscribe(ctx, func(p []byte) { got2 <- p })
	assert.NoError(t, err)
	defer unsub2()

	assert.NoError(t, bus.Publish(ctx, "events", []byte("one")))

	assert.Equal(t, [][]byte{[]byte("one")}, collect(got1, 1, t))
	assert.Equal(t, [][]byte{[]byte("one")}, collect(got2, 1, t))
}

func TestFeed_DeliversInPublishOrder(t *testing.T) {
	bus := NewMemoryBus()
	f := New(bus, "events")
	ctx := context.Background()

	got := make(chan []byte, 8)
	unsub, err := f.Subscribe(ctx, func(p []byte) { got <- p })
	assert.NoError(t, err)
	defer unsub()

	for _, payload := range []string{"first", "second", "third"} {
		assert.NoError(t, bus.Publish(ctx, "events", []byte(payload)))
	}

	events := collect(got, 3, t)
	assert.Equal(t, [][]byte{[]byte("first"), []byte("second"), []byte("third")}, events)
}

func TestFeed_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewMemoryBus()
	f := New(bus, "events")
	ctx := context.Background()

	got := make(chan []byte, 8)
	unsub, err := f.Subscribe(ctx, func(p []byte) { got <- p })
	assert.NoError(t, err)

	unsub()
	unsub() // safe to call twice

	assert.NoError(t, bus.Publish(ctx, "events", []byte("after")))

	select {
	case payload := <-got:
		t.Fatalf("unsubscribed handler received %q", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFeed_LastUnsubscribeReleasesUpstream(t *testing.T) {
	bus := NewMemoryBus()
	f := New(bus, "events")
	ctx := context.Background()

	unsub, err := f.Subscribe(ctx, func([]byte) {})
	assert.NoError(t, err)

	bus.mu.Lock()
	subscribed := len(bus.subs["events"])
	bus.mu.Unlock()
	assert.Equal(t, 1, subscribed)

	unsub()

	bus.mu.Lock()
	subscribed = len(bus.subs["events"])
	bus.mu.Unlock()
	assert.Equal(t, 0, subscribed)
}

func TestFeed_ResubscribeAfterIdle(t *testing.T) {
	bus := NewMemoryBus()
	f := New(bus, "events")
	ctx := context.Background()

	unsub, err := f.Subscribe(ctx, func([]byte) {})
	assert.NoError(t, err)
	unsub()

	got := make(chan []byte, 8)
	unsub2, err := f.Subscribe(ctx, func(p []byte) { got <- p })
	assert.NoError(t, err)
	defer unsub2()

	assert.NoError(t, bus.Publish(ctx, "events", []byte("again")))
	assert.Equal(t, [][]byte{[]byte("again")}, collect(got, 1, t))
}
