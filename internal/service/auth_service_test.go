package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"staffdesk/internal/auth"
	"staffdesk/internal/logger"
	"staffdesk/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListEmployees(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockProvider is a mock implementation of auth.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SignUp(ctx context.Context, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockProvider) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockProvider) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockProvider) OnSessionChange(ctx context.Context, callback func(auth.SessionChange)) (func(), error) {
	args := m.Called(ctx, callback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		fullName      string
		role          model.Role
		setupMock     func(*MockUserRepository, *MockProvider)
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    "new@staffdesk.local",
			password: "password123",
			fullName: "New Hire",
			role:     model.RoleEmployee,
			setupMock: func(mRepo *MockUserRepository, mProv *MockProvider) {
				mRepo.On("FindByEmail", mock.Anything, "new@staffdesk.local").Return(nil, gorm.ErrRecordNotFound)
				mRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mProv.On("SignUp", mock.Anything, "new@staffdesk.local", mock.AnythingOfType("string")).
					Return(&auth.Session{Token: "session-token", Email: "new@staffdesk.local"}, nil)
			},
		},
		{
			name:     "user already exists",
			email:    "existing@staffdesk.local",
			password: "password123",
			fullName: "Existing User",
			role:     model.RoleEmployee,
			setupMock: func(mRepo *MockUserRepository, mProv *MockProvider) {
				mRepo.On("FindByEmail", mock.Anything, "existing@staffdesk.local").
					Return(&model.User{Email: "existing@staffdesk.local"}, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:          "invalid role",
			email:         "new@staffdesk.local",
			password:      "password123",
			fullName:      "New Hire",
			role:          model.Role("manager"),
			setupMock:     func(mRepo *MockUserRepository, mProv *MockProvider) {},
			expectedError: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockProvider := new(MockProvider)
			tt.setupMock(mockRepo, mockProvider)

			service := NewAuthService(mockRepo, mockProvider, logger.Nop())
			session, user, err := service.Register(context.Background(), tt.email, tt.password, tt.fullName, tt.role)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, session)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, session)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.fullName, user.FullName)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
			mockProvider.AssertExpectations(t)
		})
	}
}

// The provider credential is the application row's ID, never the user's
// real password.
func TestAuthService_Register_ProviderCredentialIsRowID(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockProvider := new(MockProvider)

	var createdID uuid.UUID
	mockRepo.On("FindByEmail", mock.Anything, "new@staffdesk.local").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			createdID = args.Get(1).(*model.User).ID
		}).
		Return(nil)

	var providerPassword string
	mockProvider.On("SignUp", mock.Anything, "new@staffdesk.local", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			providerPassword = args.String(2)
		}).
		Return(&auth.Session{Token: "session-token", Email: "new@staffdesk.local"}, nil)

	service := NewAuthService(mockRepo, mockProvider, logger.Nop())
	_, user, err := service.Register(context.Background(), "new@staffdesk.local", "real-password", "New Hire", model.RoleEmployee)

	assert.NoError(t, err)
	assert.Equal(t, createdID.String(), providerPassword)
	assert.Equal(t, user.ID, createdID)
	assert.NotEqual(t, "real-password", providerPassword)
	mockRepo.AssertExpectations(t)
	mockProvider.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
	storedUser := &model.User{
		ID:           userID,
		Email:        "test@staffdesk.local",
		PasswordHash: string(hashed),
		Role:         model.RoleEmployee,
	}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockProvider)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@staffdesk.local",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mProv *MockProvider) {
				mRepo.On("FindByEmail", mock.Anything, "test@staffdesk.local").Return(storedUser, nil)
				mProv.On("SignIn", mock.Anything, "test@staffdesk.local", userID.String()).
					Return(&auth.Session{Token: "session-token", Email: "test@staffdesk.local"}, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "notfound@staffdesk.local",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mProv *MockProvider) {
				mRepo.On("FindByEmail", mock.Anything, "notfound@staffdesk.local").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@staffdesk.local",
			password: "wrong-password",
			setupMock: func(mRepo *MockUserRepository, mProv *MockProvider) {
				mRepo.On("FindByEmail", mock.Anything, "test@staffdesk.local").Return(storedUser, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockProvider := new(MockProvider)
			tt.setupMock(mockRepo, mockProvider)

			service := NewAuthService(mockRepo, mockProvider, logger.Nop())
			session, user, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, session)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, session)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
			}

			mockRepo.AssertExpectations(t)
			mockProvider.AssertExpectations(t)
		})
	}
}

// A store outage during login must surface as an internal error, not as
// bad credentials.
func TestAuthService_Login_StoreFailureIsNotCredentialError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockProvider := new(MockProvider)
	mockRepo.On("FindByEmail", mock.Anything, "test@staffdesk.local").
		Return(nil, errors.New("dial tcp: connection refused"))

	service := NewAuthService(mockRepo, mockProvider, logger.Nop())
	session, user, err := service.Login(context.Background(), "test@staffdesk.local", "password123")

	assert.Error(t, err)
	assert.NotEqual(t, ErrInvalidCredentials, err)
	assert.Nil(t, session)
	assert.Nil(t, user)
	mockRepo.AssertExpectations(t)
	mockProvider.AssertExpectations(t)
}

// A missing provider credential is repaired during login by falling back
// to sign-up with the row ID.
func TestAuthService_Login_ProvisionsMissingCredential(t *testing.T) {
	userID := uuid.New()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
	storedUser := &model.User{
		ID:           userID,
		Email:        "repair@staffdesk.local",
		PasswordHash: string(hashed),
		Role:         model.RoleEmployee,
	}

	mockRepo := new(MockUserRepository)
	mockProvider := new(MockProvider)
	mockRepo.On("FindByEmail", mock.Anything, "repair@staffdesk.local").Return(storedUser, nil)
	mockProvider.On("SignIn", mock.Anything, "repair@staffdesk.local", userID.String()).
		Return(nil, auth.ErrProviderSignIn)
	mockProvider.On("SignUp", mock.Anything, "repair@staffdesk.local", userID.String()).
		Return(&auth.Session{Token: "fresh-token", Email: "repair@staffdesk.local"}, nil)

	service := NewAuthService(mockRepo, mockProvider, logger.Nop())
	session, user, err := service.Login(context.Background(), "repair@staffdesk.local", "password123")

	assert.NoError(t, err)
	assert.Equal(t, "fresh-token", session.Token)
	assert.Equal(t, storedUser, user)
	mockRepo.AssertExpectations(t)
	mockProvider.AssertExpectations(t)
}

func TestAuthService_UserFromSession(t *testing.T) {
	storedUser := &model.User{ID: uuid.New(), Email: "test@staffdesk.local", Role: model.RoleAdmin}

	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository, *MockProvider)
		expectedError error
	}{
		{
			name: "live session resolves to the application user",
			setupMock: func(mRepo *MockUserRepository, mProv *MockProvider) {
				mProv.On("GetSession", mock.Anything, "good-token").
					Return(&auth.Session{Token: "good-token", Email: "test@staffdesk.local"}, nil)
				mRepo.On("FindByEmail", mock.Anything, "test@staffdesk.local").Return(storedUser, nil)
			},
		},
		{
			name: "dead session",
			setupMock: func(mRepo *MockUserRepository, mProv *MockProvider) {
				mProv.On("GetSession", mock.Anything, "good-token").Return(nil, errors.New("token expired"))
			},
			expectedError: auth.ErrNoSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockProvider := new(MockProvider)
			tt.setupMock(mockRepo, mockProvider)

			service := NewAuthService(mockRepo, mockProvider, logger.Nop())
			user, err := service.UserFromSession(context.Background(), "good-token")

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, storedUser, user)
			}

			mockRepo.AssertExpectations(t)
			mockProvider.AssertExpectations(t)
		})
	}
}
