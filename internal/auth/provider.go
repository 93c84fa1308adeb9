package auth

import (
	"context"
	"errors"
)

// Session change event types emitted on the provider's auth state stream.
const (
	EventSignedIn  = "SIGNED_IN"
	EventSignedOut = "SIGNED_OUT"
)

var (
	// ErrProviderSignIn is returned when the provider rejects a sign-in.
	ErrProviderSignIn = errors.New("provider sign-in failed")
	// ErrProviderUserExists is returned when a credential already exists
	// for the email at sign-up.
	ErrProviderUserExists = errors.New("provider credential already exists")
	// ErrNoSession is returned when a token does not map to a live session.
	ErrNoSession = errors.New("no active session")
)

// Session is an authenticated provider session.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// SessionChange is one event on the provider's auth state stream.
type SessionChange struct {
	Event string `json:"event"`
	Email string `json:"email"`
}

// Provider is the identity provider consumed by the application. It owns
// its own credential store, separate from the application users table; the
// application registers a synthetic password with it rather than the
// user's real secret.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*Session, error)
	// OnSessionChange registers a callback for sign-in/sign-out events and
	// returns an unsubscribe function.
	OnSessionChange(ctx context.Context, callback func(SessionChange)) (func(), error)
}
