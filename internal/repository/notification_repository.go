package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"staffdesk/internal/model"
)

// NotificationRepository defines notification persistence operations.
// A nil recipient filter means no scoping (the admin view); a non-nil one
// restricts to that employee's notifications plus broadcasts (rows with a
// NULL recipient). Mutations take the same filter so a caller cannot touch
// rows outside their scope.
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	List(ctx context.Context, limit int) ([]model.Notification, error)
	ListUnread(ctx context.Context, recipientID *uuid.UUID) ([]model.Notification, error)
	// CountUnread is a count-only query; no row bodies transfer.
	CountUnread(ctx context.Context, recipientID *uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, recipientID *uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, recipientID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository builds a GORM-backed repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) List(ctx context.Context, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) ListUnread(ctx context.Context, recipientID *uuid.UUID) ([]model.Notification, error) {
	q := recipientScoped(r.db.WithContext(ctx).Where("is_read = ?", false), recipientID)
	var notifications []model.Notification
	if err := q.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID *uuid.UUID) (int64, error) {
	q := recipientScoped(
		r.db.WithContext(ctx).Model(&model.Notification{}).Where("is_read = ?", false),
		recipientID,
	)
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID, recipientID *uuid.UUID) (int64, error) {
	res := recipientScoped(
		r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id),
		recipientID,
	).Update("is_read", true)
	return res.RowsAffected, res.Error
}

// MarkAllRead flips every currently-unread row in the caller's scope in
// one statement. A row inserted while the statement runs may or may not
// be included.
func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID *uuid.UUID) error {
	return recipientScoped(
		r.db.WithContext(ctx).Model(&model.Notification{}).Where("is_read = ?", false),
		recipientID,
	).Update("is_read", true).Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}

// recipientScoped narrows a query to one employee's notifications plus
// broadcasts (NULL recipient). A nil id leaves the query unscoped.
func recipientScoped(q *gorm.DB, recipientID *uuid.UUID) *gorm.DB {
	if recipientID == nil {
		return q
	}
	return q.Where("recipient_id = ? OR recipient_id IS NULL", *recipientID)
}
