package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskPriority is the urgency of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether the priority is a known value.
func (p TaskPriority) Valid() bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

// TaskStatus is a two-state enum; no other values are valid.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid reports whether the status is one of the two known values.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// Task is a unit of work assigned to an employee. CompletedAt is stamped
// whenever the status enters completed and cleared when it returns to
// pending.
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string       `json:"title" gorm:"size:255;not null"`
	Description string       `json:"description" gorm:"type:text"`
	AssignedTo  uuid.UUID    `json:"assigned_to" gorm:"type:char(36);not null;index"`
	CreatedBy   uuid.UUID    `json:"created_by" gorm:"type:char(36);not null;index"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Assignee User `json:"-" gorm:"foreignKey:AssignedTo"`
	Creator  User `json:"-" gorm:"foreignKey:CreatedBy"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
