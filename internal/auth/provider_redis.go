package auth

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"staffdesk/internal/feed"
	"staffdesk/internal/logger"
)

const (
	// sessionChangeChannel carries sign-in/sign-out events between
	// subscribers, in-process or across nodes depending on the bus.
	sessionChangeChannel = "sessions:change"

	credentialHashCost = 10
)

// RedisProvider implements Provider with credentials and sessions in Redis
// and session-change events on a feed bus.
type RedisProvider struct {
	creds    *CredentialStore
	sessions *SessionStore
	jwt      *JWTService
	bus      feed.Bus
	events   *feed.Feed
	log      *logger.Logger
}

var _ Provider = (*RedisProvider)(nil)

// NewRedisProvider builds a provider over the given stores and bus.
func NewRedisProvider(creds *CredentialStore, sessions *SessionStore, jwt *JWTService, bus feed.Bus, log *logger.Logger) *RedisProvider {
	return &RedisProvider{
		creds:    creds,
		sessions: sessions,
		jwt:      jwt,
		bus:      bus,
		events:   feed.New(bus, sessionChangeChannel),
		log:      log,
	}
}

// SignUp registers a credential for the email and opens a session, the way
// hosted providers sign a fresh user straight in.
func (p *RedisProvider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), credentialHashCost)
	if err != nil {
		return nil, err
	}

	ok, err := p.creds.StoreIfAbsent(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProviderUserExists
	}

	return p.openSession(ctx, email)
}

// SignIn verifies the credential and opens a session. A missing credential
// and a wrong password both map to ErrProviderSignIn.
func (p *RedisProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	hash, err := p.creds.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrProviderSignIn
	}

	return p.openSession(ctx, email)
}

// SignOut releases the session behind the token. Unknown or expired tokens
// map to ErrNoSession.
func (p *RedisProvider) SignOut(ctx context.Context, token string) error {
	claims, err := p.jwt.ValidateToken(token)
	if err != nil {
		return ErrNoSession
	}
	if err := p.sessions.Delete(ctx, claims.ID); err != nil {
		return err
	}
	p.publishChange(ctx, SessionChange{Event: EventSignedOut, Email: claims.Email})
	return nil
}

// GetSession resolves a token to its live session, or ErrNoSession.
func (p *RedisProvider) GetSession(ctx context.Context, token string) (*Session, error) {
	claims, err := p.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrNoSession
	}
	email, err := p.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, ErrNoSession
	}
	return &Session{Token: token, Email: email}, nil
}

// OnSessionChange subscribes callback to the auth state stream.
func (p *RedisProvider) OnSessionChange(ctx context.Context, callback func(SessionChange)) (func(), error) {
	return p.events.Subscribe(ctx, func(payload []byte) {
		var change SessionChange
		if err := json.Unmarshal(payload, &change); err != nil {
			p.log.Warn().Err(err).Msg("dropping malformed session change event")
			return
		}
		callback(change)
	})
}

func (p *RedisProvider) openSession(ctx context.Context, email string) (*Session, error) {
	sessionID := uuid.New().String()
	token, err := p.jwt.GenerateSessionToken(email, sessionID)
	if err != nil {
		return nil, err
	}
	if err := p.sessions.Store(ctx, sessionID, email, SessionExpiry); err != nil {
		return nil, err
	}
	p.publishChange(ctx, SessionChange{Event: EventSignedIn, Email: email})
	return &Session{Token: token, Email: email}, nil
}

func (p *RedisProvider) publishChange(ctx context.Context, change SessionChange) {
	payload, err := json.Marshal(change)
	if err != nil {
		p.log.Error().Err(err).Msg("marshal session change event")
		return
	}
	if err := p.bus.Publish(ctx, sessionChangeChannel, payload); err != nil {
		// Change events are best-effort; listeners reconcile on demand.
		p.log.Warn().Err(err).Str("email", change.Email).Msg("publish session change event")
	}
}
