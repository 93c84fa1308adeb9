package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"staffdesk/internal/errors"
	"staffdesk/internal/service"
)

// EmployeeHandler handles the employee directory and profiles.
type EmployeeHandler struct {
	employeeService service.EmployeeService
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(employeeService service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// ProfileRequest represents an employee profile write.
type ProfileRequest struct {
	Department string `json:"department"`
	Position   string `json:"position"`
	Salary     string `json:"salary" validate:"omitempty,numeric"`
	JoinDate   string `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
}

// List godoc
// @Summary List employees ordered by name
// @Tags employees
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.User
// @Failure 500 {object} errors.ErrorResponse
// @Router /employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	employees, err := h.employeeService.ListEmployees(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, employees)
}

// GetProfile godoc
// @Summary Get an employee's profile
// @Tags employees
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.EmployeeProfile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /employees/{id}/profile [get]
func (h *EmployeeHandler) GetProfile(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	profile, err := h.employeeService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, profile)
}

// PutProfile godoc
// @Summary Create or replace an employee's profile
// @Tags employees
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body ProfileRequest true "Profile data"
// @Success 200 {object} model.EmployeeProfile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /employees/{id}/profile [put]
func (h *EmployeeHandler) PutProfile(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := service.ProfileInput{
		Department: req.Department,
		Position:   req.Position,
	}
	if req.Salary != "" {
		salary, err := decimal.NewFromString(req.Salary)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid salary")
		}
		input.Salary = salary
	}
	if req.JoinDate != "" {
		joined, err := time.Parse(dueDateLayout, req.JoinDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid join date")
		}
		input.JoinDate = &joined
	}

	profile, err := h.employeeService.UpsertProfile(c.Request().Context(), userID, input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, profile)
}
