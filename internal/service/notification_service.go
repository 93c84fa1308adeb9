package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	apperrors "staffdesk/internal/errors"
	"staffdesk/internal/feed"
	"staffdesk/internal/logger"
	"staffdesk/internal/model"
	"staffdesk/internal/repository"
)

// NotificationChannel is the feed channel carrying notification inserts.
const NotificationChannel = "notifications:insert"

// defaultNotificationLimit bounds list queries when the caller does not
// pick a page size. There is no pagination cursor: repeated calls return
// the same most-recent window.
const defaultNotificationLimit = 50

// CreateNotificationInput carries the fields for a new notification.
type CreateNotificationInput struct {
	RecipientID *uuid.UUID
	Title       string
	Message     string
	Type        string
}

// NotificationService orchestrates notification CRUD, unread queries and
// the live insert feed. Feed delivery is at-most-once: consumers that were
// offline reconcile with GetUnreadCount.
type NotificationService interface {
	CreateNotification(ctx context.Context, input CreateNotificationInput) (*model.Notification, error)
	GetNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	GetUnreadNotifications(ctx context.Context, recipientID *uuid.UUID) ([]model.Notification, error)
	GetUnreadCount(ctx context.Context, recipientID *uuid.UUID) (int64, error)
	// MarkAsRead and MarkAllAsRead honor the same recipient scope as the
	// unread queries: a row outside the caller's scope reads as missing.
	MarkAsRead(ctx context.Context, id uuid.UUID, recipientID *uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID *uuid.UUID) error
	DeleteNotification(ctx context.Context, id uuid.UUID) error
	// SubscribeToNotifications invokes callback once per inserted
	// notification and returns an unsubscribe function that must be called
	// to release the feed handle.
	SubscribeToNotifications(ctx context.Context, callback func(*model.Notification)) (func(), error)
}

type notificationService struct {
	repo repository.NotificationRepository
	bus  feed.Bus
	feed *feed.Feed
	log  *logger.Logger
}

// NewNotificationService builds a NotificationService over the repository
// and change-feed bus.
func NewNotificationService(repo repository.NotificationRepository, bus feed.Bus, log *logger.Logger) NotificationService {
	return &notificationService{
		repo: repo,
		bus:  bus,
		feed: feed.New(bus, NotificationChannel),
		log:  log,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, input CreateNotificationInput) (*model.Notification, error) {
	notification := &model.Notification{
		ID:          uuid.New(),
		RecipientID: input.RecipientID,
		Title:       input.Title,
		Message:     input.Message,
		Type:        input.Type,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	// Insert events are best-effort: a failed publish loses the push but
	// the row is durable and reconcilable via GetUnreadCount.
	if payload, err := json.Marshal(notification); err != nil {
		s.log.Error().Err(err).Str("notification_id", notification.ID.String()).Msg("marshal notification insert event")
	} else if err := s.bus.Publish(ctx, NotificationChannel, payload); err != nil {
		s.log.Warn().Err(err).Str("notification_id", notification.ID.String()).Msg("publish notification insert event")
	}

	return notification, nil
}

func (s *notificationService) GetNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	return s.repo.List(ctx, limit)
}

func (s *notificationService) GetUnreadNotifications(ctx context.Context, recipientID *uuid.UUID) ([]model.Notification, error) {
	return s.repo.ListUnread(ctx, recipientID)
}

func (s *notificationService) GetUnreadCount(ctx context.Context, recipientID *uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id uuid.UUID, recipientID *uuid.UUID) error {
	rows, err := s.repo.MarkRead(ctx, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, recipientID *uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *notificationService) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) SubscribeToNotifications(ctx context.Context, callback func(*model.Notification)) (func(), error) {
	return s.feed.Subscribe(ctx, func(payload []byte) {
		var notification model.Notification
		if err := json.Unmarshal(payload, &notification); err != nil {
			s.log.Warn().Err(err).Msg("dropping malformed notification event")
			return
		}
		callback(&notification)
	})
}
