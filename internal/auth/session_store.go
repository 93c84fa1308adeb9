package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staffdesk/internal/cache"
)

const sessionKeyPrefix = "provider:session:"

// SessionStore keeps provider session records in Redis with a TTL. It sits
// on the fail-safe cache wrapper: losing a record signs the user out, which
// is the safe direction.
type SessionStore struct {
	cache *cache.Client
}

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

type sessionRecord struct {
	Email string `json:"email"`
}

// Store persists a session record under its ID.
func (s *SessionStore) Store(ctx context.Context, sessionID, email string, ttl time.Duration) error {
	payload, err := json.Marshal(sessionRecord{Email: email})
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+sessionID, payload, ttl)
}

// Get returns the email bound to a session, or ErrNoSession.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	data, err := s.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil || data == nil {
		return "", ErrNoSession
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("unmarshal session record: %w", err)
	}
	return rec.Email, nil
}

// Delete removes a session record.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+sessionID)
}
