package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "staffdesk/internal/errors"
	"staffdesk/internal/model"
	"staffdesk/internal/repository"
)

// CreateTaskInput carries the fields for a new task. Status is always
// pending at creation; an empty priority defaults to medium.
type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  uuid.UUID
	CreatedBy   uuid.UUID
	Priority    model.TaskPriority
	DueDate     *time.Time
}

// TaskUpdate is a partial update; nil fields are left untouched.
// ClearDueDate removes the due date, which a nil DueDate alone cannot
// express.
type TaskUpdate struct {
	Title        *string
	Description  *string
	AssignedTo   *uuid.UUID
	Priority     *model.TaskPriority
	Status       *model.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

// TaskStatistics summarizes task completion for a dashboard.
type TaskStatistics struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	Pending    int64 `json:"pending"`
	Percentage int   `json:"percentage"`
}

// TaskService orchestrates task reads, writes and aggregate statistics.
// There is no client-side caching: callers re-fetch after every mutation.
type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*model.Task, error)
	GetTask(ctx context.Context, taskID uuid.UUID) (*model.Task, error)
	GetAllTasks(ctx context.Context) ([]model.Task, error)
	GetTasksByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.Task, error)
	UpdateTask(ctx context.Context, taskID uuid.UUID, update TaskUpdate) (*model.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status model.TaskStatus) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
	GetTaskStatistics(ctx context.Context, employeeID *uuid.UUID) (*TaskStatistics, error)
}

type taskService struct {
	repo repository.TaskRepository
}

// NewTaskService builds a TaskService over the repository.
func NewTaskService(repo repository.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) CreateTask(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	priority := input.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.ErrInvalidPriority
	}

	task := &model.Task{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   input.CreatedBy,
		Priority:    priority,
		Status:      model.TaskStatusPending,
		DueDate:     input.DueDate,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("load task: %w", err)
	}
	return task, nil
}

func (s *taskService) GetAllTasks(ctx context.Context) ([]model.Task, error) {
	return s.repo.ListAll(ctx)
}

func (s *taskService) GetTasksByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.Task, error) {
	return s.repo.ListByAssignee(ctx, employeeID)
}

func (s *taskService) UpdateTask(ctx context.Context, taskID uuid.UUID, update TaskUpdate) (*model.Task, error) {
	fields := map[string]interface{}{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.AssignedTo != nil {
		fields["assigned_to"] = *update.AssignedTo
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, apperrors.ErrInvalidPriority
		}
		fields["priority"] = *update.Priority
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, apperrors.ErrInvalidTaskStatus
		}
		fields["status"] = *update.Status
		applyCompletionStamp(fields, *update.Status)
	}
	if update.ClearDueDate {
		fields["due_date"] = nil
	} else if update.DueDate != nil {
		fields["due_date"] = *update.DueDate
	}

	if len(fields) == 0 {
		return s.findExisting(ctx, taskID)
	}

	rows, err := s.repo.Update(ctx, taskID, fields)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.ErrTaskNotFound
	}
	return s.findExisting(ctx, taskID)
}

func (s *taskService) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidTaskStatus
	}

	fields := map[string]interface{}{"status": status}
	applyCompletionStamp(fields, status)

	rows, err := s.repo.Update(ctx, taskID, fields)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.ErrTaskNotFound
	}
	return s.findExisting(ctx, taskID)
}

func (s *taskService) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	rows, err := s.repo.Delete(ctx, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

func (s *taskService) GetTaskStatistics(ctx context.Context, employeeID *uuid.UUID) (*TaskStatistics, error) {
	completed, err := s.repo.CountByStatus(ctx, model.TaskStatusCompleted, employeeID)
	if err != nil {
		return nil, fmt.Errorf("count completed tasks: %w", err)
	}
	pending, err := s.repo.CountByStatus(ctx, model.TaskStatusPending, employeeID)
	if err != nil {
		return nil, fmt.Errorf("count pending tasks: %w", err)
	}

	stats := &TaskStatistics{
		Total:     completed + pending,
		Completed: completed,
		Pending:   pending,
	}
	if stats.Total > 0 {
		stats.Percentage = int(math.Round(float64(completed) / float64(stats.Total) * 100))
	}
	return stats, nil
}

func (s *taskService) findExisting(ctx context.Context, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return task, nil
}

// applyCompletionStamp enforces the completion-timestamp rule: entering
// completed stamps completed_at, returning to pending clears it.
func applyCompletionStamp(fields map[string]interface{}, status model.TaskStatus) {
	if status == model.TaskStatusCompleted {
		now := time.Now().UTC()
		fields["completed_at"] = &now
	} else {
		fields["completed_at"] = nil
	}
}
