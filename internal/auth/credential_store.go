package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const credentialKeyPrefix = "provider:credential:"

// CredentialStore keeps provider-level password hashes keyed by email.
// Unlike the session store it uses the raw client: a swallowed write here
// would report a sign-up as successful while storing nothing.
type CredentialStore struct {
	client *redis.Client
}

// NewCredentialStore creates a new credential store.
func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client}
}

// StoreIfAbsent writes the hash unless a credential already exists for the
// email. Returns false when one does.
func (s *CredentialStore) StoreIfAbsent(ctx context.Context, email, hash string) (bool, error) {
	ok, err := s.client.SetNX(ctx, credentialKeyPrefix+email, hash, 0).Result()
	if err != nil {
		return false, fmt.Errorf("store credential: %w", err)
	}
	return ok, nil
}

// Get returns the stored hash, or ErrProviderSignIn when no credential
// exists for the email.
func (s *CredentialStore) Get(ctx context.Context, email string) (string, error) {
	hash, err := s.client.Get(ctx, credentialKeyPrefix+email).Result()
	if err == redis.Nil {
		return "", ErrProviderSignIn
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return hash, nil
}
