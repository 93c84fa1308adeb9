package session

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"staffdesk/internal/auth"
	apperrors "staffdesk/internal/errors"
	"staffdesk/internal/model"
	"staffdesk/internal/repository"
)

// Resolver turns a bearer token into the application user behind it. It is
// stateless; the HTTP layer runs it once per request.
type Resolver struct {
	provider auth.Provider
	users    repository.UserRepository
}

// NewResolver builds a Resolver over the provider and users table.
func NewResolver(provider auth.Provider, users repository.UserRepository) *Resolver {
	return &Resolver{provider: provider, users: users}
}

// Resolve validates the token with the provider and loads the matching
// application row. A live provider session without an application row
// resolves to ErrUserNotFound and is treated as signed out.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	session, err := r.provider.GetSession(ctx, token)
	if err != nil {
		return nil, auth.ErrNoSession
	}
	user, err := r.users.FindByEmail(ctx, session.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user for session: %w", err)
	}
	return user, nil
}
