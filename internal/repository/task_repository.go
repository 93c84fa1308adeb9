package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"staffdesk/internal/model"
)

// TaskRepository defines task persistence operations. List results are
// ordered newest-first by creation time. Update and Delete report the
// number of affected rows so the service can distinguish a missing task
// from a no-op write.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListAll(ctx context.Context) ([]model.Task, error)
	ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]model.Task, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	// CountByStatus is a count-only query; no row bodies transfer.
	CountByStatus(ctx context.Context, status model.TaskStatus, assigneeID *uuid.UUID) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository builds a GORM-backed repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("assigned_to = ?", assigneeID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	return res.RowsAffected, res.Error
}

func (r *taskRepository) CountByStatus(ctx context.Context, status model.TaskStatus, assigneeID *uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).Where("status = ?", status)
	if assigneeID != nil {
		q = q.Where("assigned_to = ?", *assigneeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
