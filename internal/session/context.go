package session

import (
	"context"
	"sync"

	"staffdesk/internal/auth"
	"staffdesk/internal/model"
)

// Context tracks the signed-in identity for one interactive scope (a CLI
// session, a long-lived stream connection, a test). It subscribes to the
// provider's session-change stream at construction and re-resolves the
// identity when events for its email arrive. Close releases the
// subscription; change callbacks arriving after Close are no-ops, so a
// scope that goes away mid-flight never has its state mutated late.
type Context struct {
	resolver *Resolver

	mu          sync.RWMutex
	current     *model.User
	token       string
	closed      bool
	unsubscribe func()

	clearOnce sync.Once
	cleared   chan struct{}
}

// NewContext builds a Context and wires the session-change subscription.
func NewContext(ctx context.Context, provider auth.Provider, resolver *Resolver) (*Context, error) {
	c := &Context{
		resolver: resolver,
		cleared:  make(chan struct{}),
	}

	unsubscribe, err := provider.OnSessionChange(ctx, func(change auth.SessionChange) {
		c.onChange(ctx, change)
	})
	if err != nil {
		return nil, err
	}
	c.unsubscribe = unsubscribe
	return c, nil
}

// Bootstrap resolves an existing provider session, if any, into the
// current identity. A missing or dead session leaves the scope signed out
// without error.
func (c *Context) Bootstrap(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	user, err := c.resolver.Resolve(ctx, token)
	if err != nil {
		if err == auth.ErrNoSession {
			return nil
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.current = user
	c.token = token
	return nil
}

// Current returns the signed-in user, or nil.
func (c *Context) Current() *model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetIdentity records a fresh identity after login or registration.
func (c *Context) SetIdentity(user *model.User, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.current = user
	c.token = token
}

// Clear signs the scope out locally.
func (c *Context) Clear() {
	c.mu.Lock()
	c.current = nil
	c.token = ""
	c.mu.Unlock()

	c.clearOnce.Do(func() { close(c.cleared) })
}

// SignedOut returns a channel closed the first time the scope's identity
// is cleared. Long-lived consumers (a stream connection) select on it to
// end when the session behind them dies.
func (c *Context) SignedOut() <-chan struct{} {
	return c.cleared
}

// Close tears the scope down: the change subscription is released and any
// callback still in flight becomes a no-op.
func (c *Context) Close() {
	c.mu.Lock()
	c.closed = true
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// onChange re-runs the lookup-and-set logic for events about our email.
func (c *Context) onChange(ctx context.Context, change auth.SessionChange) {
	c.mu.RLock()
	closed := c.closed
	current := c.current
	token := c.token
	c.mu.RUnlock()

	if closed {
		return
	}
	if current == nil || current.Email != change.Email {
		return
	}

	switch change.Event {
	case auth.EventSignedOut:
		c.Clear()
	case auth.EventSignedIn:
		user, err := c.resolver.Resolve(ctx, token)
		if err != nil {
			c.Clear()
			return
		}
		c.mu.Lock()
		if !c.closed {
			c.current = user
		}
		c.mu.Unlock()
	}
}
