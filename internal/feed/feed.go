package feed

import (
	"context"
	"sync"
)

// Feed multiplexes one upstream bus channel to any number of local
// subscribers. Every subscriber sees every event (fan-out, not competing
// consumers); events reach subscribers in publish order because a single
// delivery loop drains the upstream channel.
//
// The upstream subscription is opened lazily by the first local subscriber
// and released when the last one unsubscribes, so an idle Feed holds no
// bus resources.
type Feed struct {
	bus     Bus
	channel string

	mu       sync.Mutex
	next     int
	handlers map[int]func([]byte)
	stop     func()
}

// New creates a Feed over the given bus channel.
func New(bus Bus, channel string) *Feed {
	return &Feed{
		bus:      bus,
		channel:  channel,
		handlers: make(map[int]func([]byte)),
	}
}

// Subscribe registers handler for every future event on the feed and
// returns an unsubscribe function. The unsubscribe function is safe to
// call more than once. Subscribe fails if the upstream channel cannot be
// opened.
func (f *Feed) Subscribe(ctx context.Context, handler func([]byte)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.handlers) == 0 {
		ch, stop, err := f.bus.Subscribe(ctx, f.channel)
		if err != nil {
			return nil, err
		}
		f.stop = stop
		go f.deliver(ch)
	}

	id := f.next
	f.next++
	f.handlers[id] = handler

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.handlers, id)
			if len(f.handlers) == 0 && f.stop != nil {
				f.stop()
				f.stop = nil
			}
		})
	}
	return unsubscribe, nil
}

// deliver fans each upstream event out to the current subscriber set.
func (f *Feed) deliver(ch <-chan []byte) {
	for payload := range ch {
		f.mu.Lock()
		handlers := make([]func([]byte), 0, len(f.handlers))
		for _, h := range f.handlers {
			handlers = append(handlers, h)
		}
		f.mu.Unlock()

		for _, h := range handlers {
			h(payload)
		}
	}
}
