package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/google/uuid"

	"staffdesk/internal/auth"
	apperrors "staffdesk/internal/errors"
	"staffdesk/internal/logger"
	"staffdesk/internal/model"
	"staffdesk/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// The same value covers an unknown email and a wrong password so login
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserAlreadyExists is returned when trying to register an existing user.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidRole is returned for roles outside the enum.
	ErrInvalidRole = errors.New("invalid role")
)

// AuthService reconciles the application users table with the identity
// provider's credential store. The provider never receives the user's real
// password: the application row's generated ID is registered as the
// provider-level credential instead.
type AuthService interface {
	Register(ctx context.Context, email, password, fullName string, role model.Role) (*auth.Session, *model.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, *model.User, error)
	Logout(ctx context.Context, token string) error
	// UserFromSession resolves a session token to the application user,
	// the session bootstrap of an interactive client.
	UserFromSession(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	provider auth.Provider
	log      *logger.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, provider auth.Provider, log *logger.Logger) AuthService {
	return &authService{
		users:    users,
		provider: provider,
		log:      log,
	}
}

// Register creates the application row first, then registers the
// provider-level credential keyed by the new row's ID.
func (s *authService) Register(ctx context.Context, email, password, fullName string, role model.Role) (*auth.Session, *model.User, error) {
	if !role.Valid() {
		return nil, nil, ErrInvalidRole
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, nil, ErrUserAlreadyExists
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     fullName,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	session, err := s.provider.SignUp(ctx, email, user.ID.String())
	if err != nil {
		// The application row exists but the provider credential does not;
		// the next login repairs this through the sign-up fallback.
		return nil, nil, fmt.Errorf("provider sign-up: %w", err)
	}

	return session, user, nil
}

// Login verifies the real password against the application row, then signs
// in to the provider with the row ID. A failed provider sign-in means the
// credential was never created (legacy row or a registration that failed
// half-way), so it is provisioned now.
func (s *authService) Login(ctx context.Context, email, password string) (*auth.Session, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.provider.SignIn(ctx, email, user.ID.String())
	if err != nil {
		s.log.Warn().Str("email", email).Msg("provider sign-in failed, provisioning credential from earlier partial registration")
		session, err = s.provider.SignUp(ctx, email, user.ID.String())
		if err != nil {
			return nil, nil, fmt.Errorf("provider credential recovery: %w", err)
		}
	}

	return session, user, nil
}

// Logout signs out of the provider; it returns only after the provider
// confirms.
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.provider.SignOut(ctx, token)
}

func (s *authService) UserFromSession(ctx context.Context, token string) (*model.User, error) {
	session, err := s.provider.GetSession(ctx, token)
	if err != nil {
		return nil, auth.ErrNoSession
	}
	user, err := s.users.FindByEmail(ctx, session.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user for session: %w", err)
	}
	return user, nil
}
