package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"staffdesk/internal/errors"
	"staffdesk/internal/model"
	"staffdesk/internal/service"
)

// dueDateLayout is the calendar-date format accepted for due dates.
const dueDateLayout = "2006-01-02"

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to" validate:"required,uuid"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskRequest represents a partial task update. Absent fields are
// left untouched; an empty due_date string clears the due date.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,uuid"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending completed"`
	DueDate     *string `json:"due_date" validate:"omitempty"`
}

// UpdateStatusRequest represents a status-only update.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed"`
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	assignee, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assignee id")
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignee,
		CreatedBy:   CurrentUser(c).ID,
		Priority:    model.TaskPriority(req.Priority),
	}
	if req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, req.DueDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid due date")
		}
		input.DueDate = &due
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, task)
}

// List godoc
// @Summary List all tasks, newest first
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.Task
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	tasks, err := h.taskService.GetAllTasks(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, tasks)
}

// ListMine godoc
// @Summary List tasks assigned to the current user, newest first
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.Task
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/mine [get]
func (h *TaskHandler) ListMine(c echo.Context) error {
	tasks, err := h.taskService.GetTasksByEmployee(c.Request().Context(), CurrentUser(c).ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, tasks)
}

// Update godoc
// @Summary Partially update a task
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to update"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	update := service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.AssignedTo != nil {
		assignee, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid assignee id")
		}
		update.AssignedTo = &assignee
	}
	if req.Priority != nil {
		priority := model.TaskPriority(*req.Priority)
		update.Priority = &priority
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		update.Status = &status
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			update.ClearDueDate = true
		} else {
			due, err := time.Parse(dueDateLayout, *req.DueDate)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid due date")
			}
			update.DueDate = &due
		}
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), taskID, update)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateStatus godoc
// @Summary Update a task's status
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	user := CurrentUser(c)

	// Employees may only toggle their own tasks; admins may toggle any.
	if user.Role == model.RoleEmployee {
		task, err := h.taskService.GetTask(ctx, taskID)
		if err != nil {
			httpErr := errors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if task.AssignedTo != user.ID {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "task is assigned to another employee",
				Code:  "FORBIDDEN",
			})
		}
	}

	task, err := h.taskService.UpdateTaskStatus(ctx, taskID, model.TaskStatus(req.Status))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param id path string true "Task ID"
// @Success 204 "No Content"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), taskID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// Statistics godoc
// @Summary Task completion statistics
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param employee_id query string false "Scope to one employee"
// @Success 200 {object} service.TaskStatistics
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/statistics [get]
func (h *TaskHandler) Statistics(c echo.Context) error {
	var employeeID *uuid.UUID
	if raw := c.QueryParam("employee_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid employee id")
		}
		employeeID = &id
	}

	// Employees only ever see their own numbers.
	if user := CurrentUser(c); user.Role == model.RoleEmployee {
		id := user.ID
		employeeID = &id
	}

	stats, err := h.taskService.GetTaskStatistics(c.Request().Context(), employeeID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, stats)
}
