package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "staffdesk/internal/errors"
	"staffdesk/internal/feed"
	"staffdesk/internal/logger"
	"staffdesk/internal/model"
)

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListUnread(ctx context.Context, recipientID *uuid.UUID) ([]model.Notification, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, recipientID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, recipientID *uuid.UUID) (int64, error) {
	args := m.Called(ctx, id, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, recipientID *uuid.UUID) error {
	args := m.Called(ctx, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func TestNotificationService_CreateNotification(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Notification")).Return(nil)

	service := NewNotificationService(mockRepo, feed.NewMemoryBus(), logger.Nop())
	recipient := uuid.New()
	notification, err := service.CreateNotification(context.Background(), CreateNotificationInput{
		RecipientID: &recipient,
		Title:       "Leave approved",
		Message:     "Your leave request was approved.",
		Type:        "leave",
	})

	assert.NoError(t, err)
	assert.NotNil(t, notification)
	assert.NotEqual(t, uuid.Nil, notification.ID)
	assert.Equal(t, &recipient, notification.RecipientID)
	assert.False(t, notification.IsRead)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_GetNotifications_DefaultLimit(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	mockRepo.On("List", mock.Anything, 50).Return([]model.Notification{}, nil)

	service := NewNotificationService(mockRepo, feed.NewMemoryBus(), logger.Nop())
	_, err := service.GetNotifications(context.Background(), 0)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	id := uuid.New()

	recipient := uuid.New()

	tests := []struct {
		name          string
		recipientID   *uuid.UUID
		setupMock     func(*MockNotificationRepository)
		expectedError error
	}{
		{
			name: "successful unscoped mark",
			setupMock: func(m *MockNotificationRepository) {
				m.On("MarkRead", mock.Anything, id, (*uuid.UUID)(nil)).Return(int64(1), nil)
			},
		},
		{
			name:        "scoped mark passes the recipient filter through",
			recipientID: &recipient,
			setupMock: func(m *MockNotificationRepository) {
				m.On("MarkRead", mock.Anything, id, &recipient).Return(int64(1), nil)
			},
		},
		{
			name: "missing notification",
			setupMock: func(m *MockNotificationRepository) {
				m.On("MarkRead", mock.Anything, id, (*uuid.UUID)(nil)).Return(int64(0), nil)
			},
			expectedError: apperrors.ErrNotificationNotFound,
		},
		{
			name:        "row outside the caller's scope reads as missing",
			recipientID: &recipient,
			setupMock: func(m *MockNotificationRepository) {
				m.On("MarkRead", mock.Anything, id, &recipient).Return(int64(0), nil)
			},
			expectedError: apperrors.ErrNotificationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockNotificationRepository)
			tt.setupMock(mockRepo)

			service := NewNotificationService(mockRepo, feed.NewMemoryBus(), logger.Nop())
			err := service.MarkAsRead(context.Background(), id, tt.recipientID)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestNotificationService_MarkAllAsRead_Scoping(t *testing.T) {
	recipient := uuid.New()
	mockRepo := new(MockNotificationRepository)
	mockRepo.On("MarkAllRead", mock.Anything, &recipient).Return(nil)
	mockRepo.On("MarkAllRead", mock.Anything, (*uuid.UUID)(nil)).Return(nil)

	service := NewNotificationService(mockRepo, feed.NewMemoryBus(), logger.Nop())

	assert.NoError(t, service.MarkAllAsRead(context.Background(), &recipient))
	assert.NoError(t, service.MarkAllAsRead(context.Background(), nil))
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_DeleteNotification_NotFound(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockNotificationRepository)
	mockRepo.On("Delete", mock.Anything, id).Return(int64(0), nil)

	service := NewNotificationService(mockRepo, feed.NewMemoryBus(), logger.Nop())
	err := service.DeleteNotification(context.Background(), id)

	assert.Equal(t, apperrors.ErrNotificationNotFound, err)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_GetUnreadCount_Scoping(t *testing.T) {
	recipient := uuid.New()
	mockRepo := new(MockNotificationRepository)
	mockRepo.On("CountUnread", mock.Anything, (*uuid.UUID)(nil)).Return(int64(7), nil)
	mockRepo.On("CountUnread", mock.Anything, &recipient).Return(int64(2), nil)

	service := NewNotificationService(mockRepo, feed.NewMemoryBus(), logger.Nop())

	all, err := service.GetUnreadCount(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), all)

	scoped, err := service.GetUnreadCount(context.Background(), &recipient)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), scoped)

	mockRepo.AssertExpectations(t)
}

func TestNotificationService_SubscribeToNotifications(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Notification")).Return(nil)

	service := NewNotificationService(mockRepo, feed.NewMemoryBus(), logger.Nop())

	received := make(chan *model.Notification, 4)
	unsubscribe, err := service.SubscribeToNotifications(context.Background(), func(n *model.Notification) {
		received <- n
	})
	assert.NoError(t, err)
	defer unsubscribe()

	created, err := service.CreateNotification(context.Background(), CreateNotificationInput{
		Title: "Task assigned",
		Type:  "task",
	})
	assert.NoError(t, err)

	select {
	case got := <-received:
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Task assigned", got.Title)
	case <-time.After(time.Second):
		t.Fatal("expected a notification event")
	}

	// Exactly one event per insert.
	select {
	case extra := <-received:
		t.Fatalf("unexpected extra event %v", extra.ID)
	case <-time.After(50 * time.Millisecond):
	}

	mockRepo.AssertExpectations(t)
}

func TestNotificationService_SubscribeToNotifications_Unsubscribed(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Notification")).Return(nil)

	service := NewNotificationService(mockRepo, feed.NewMemoryBus(), logger.Nop())

	received := make(chan *model.Notification, 4)
	unsubscribe, err := service.SubscribeToNotifications(context.Background(), func(n *model.Notification) {
		received <- n
	})
	assert.NoError(t, err)
	unsubscribe()
	// Calling the disposer again is harmless.
	unsubscribe()

	_, err = service.CreateNotification(context.Background(), CreateNotificationInput{
		Title: "After unsubscribe",
		Type:  "task",
	})
	assert.NoError(t, err)

	select {
	case got := <-received:
		t.Fatalf("disposed subscription received event %v", got.ID)
	case <-time.After(50 * time.Millisecond):
	}

	mockRepo.AssertExpectations(t)
}
