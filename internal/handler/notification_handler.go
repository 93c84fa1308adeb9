package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"staffdesk/internal/auth"
	"staffdesk/internal/errors"
	"staffdesk/internal/model"
	"staffdesk/internal/service"
	"staffdesk/internal/session"
)

// NotificationHandler handles notification endpoints, including the live
// SSE stream. The provider and resolver back the per-stream identity
// scope, so a stream dies when the session behind it is signed out.
type NotificationHandler struct {
	notificationService service.NotificationService
	provider            auth.Provider
	resolver            *session.Resolver
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notificationService service.NotificationService, provider auth.Provider, resolver *session.Resolver) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		provider:            provider,
		resolver:            resolver,
	}
}

// CreateNotificationRequest represents a notification creation request.
type CreateNotificationRequest struct {
	RecipientID string `json:"recipient_id" validate:"omitempty,uuid"`
	Title       string `json:"title" validate:"required"`
	Message     string `json:"message"`
	Type        string `json:"type"`
}

// UnreadCountResponse carries a count-only unread query result.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// Create godoc
// @Summary Create a notification
// @Tags notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateNotificationRequest true "Notification data"
// @Success 201 {object} model.Notification
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notifications [post]
func (h *NotificationHandler) Create(c echo.Context) error {
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := service.CreateNotificationInput{
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
	}
	if req.RecipientID != "" {
		recipient, err := uuid.Parse(req.RecipientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid recipient id")
		}
		input.RecipientID = &recipient
	}

	notification, err := h.notificationService.CreateNotification(c.Request().Context(), input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, notification)
}

// List godoc
// @Summary List notifications, newest first
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size (default 50)"
// @Success 200 {array} model.Notification
// @Failure 500 {object} errors.ErrorResponse
// @Router /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	notifications, err := h.notificationService.GetNotifications(c.Request().Context(), limit)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, notifications)
}

// ListUnread godoc
// @Summary List unread notifications, newest first
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.Notification
// @Failure 500 {object} errors.ErrorResponse
// @Router /notifications/unread [get]
func (h *NotificationHandler) ListUnread(c echo.Context) error {
	notifications, err := h.notificationService.GetUnreadNotifications(c.Request().Context(), recipientScope(CurrentUser(c)))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, notifications)
}

// UnreadCount godoc
// @Summary Count unread notifications
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} UnreadCountResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notifications/unread/count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	count, err := h.notificationService.GetUnreadCount(c.Request().Context(), recipientScope(CurrentUser(c)))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	if err := h.notificationService.MarkAsRead(c.Request().Context(), id, recipientScope(CurrentUser(c))); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead godoc
// @Summary Mark all unread notifications in the caller's scope as read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 204 "No Content"
// @Failure 500 {object} errors.ErrorResponse
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	if err := h.notificationService.MarkAllAsRead(c.Request().Context(), recipientScope(CurrentUser(c))); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete godoc
// @Summary Delete a notification
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	if err := h.notificationService.DeleteNotification(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// Stream godoc
// @Summary Live notification stream (server-sent events)
// @Description Pushes an event per inserted notification plus a refreshed
// @Description unread count. Clients that reconnect reconcile with the
// @Description count endpoint; missed events are not redelivered.
// @Tags notifications
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200
// @Failure 500 {object} errors.ErrorResponse
// @Router /notifications/stream [get]
func (h *NotificationHandler) Stream(c echo.Context) error {
	user := CurrentUser(c)
	scope := recipientScope(user)
	ctx := c.Request().Context()

	// Each stream carries its own identity scope so it ends as soon as
	// the session behind it is signed out, not on the next write failure.
	token := BearerToken(c)
	if token == "" {
		token = SessionCookie(c)
	}
	identity, err := session.NewContext(ctx, h.provider, h.resolver)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to open notification stream",
			Code:  "SUBSCRIBE_FAILED",
		})
	}
	defer identity.Close()
	if err := identity.Bootstrap(ctx, token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to open notification stream",
			Code:  "SUBSCRIBE_FAILED",
		})
	}

	events := make(chan *model.Notification, 16)
	unsubscribe, err := h.notificationService.SubscribeToNotifications(ctx, func(n *model.Notification) {
		// A slow client misses the push and reconciles via the count.
		select {
		case events <- n:
		default:
		}
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to open notification stream",
			Code:  "SUBSCRIBE_FAILED",
		})
	}
	defer unsubscribe()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := h.writeUnreadCount(c, scope); err != nil {
		return nil
	}
	w.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-identity.SignedOut():
			return nil
		case n := <-events:
			if !visibleTo(user, n) {
				continue
			}
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			if err := h.writeUnreadCount(c, scope); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

func (h *NotificationHandler) writeUnreadCount(c echo.Context, scope *uuid.UUID) error {
	count, err := h.notificationService.GetUnreadCount(c.Request().Context(), scope)
	if err != nil {
		return nil // transient; next event retries
	}
	_, err = fmt.Fprintf(c.Response(), "event: unread_count\ndata: %d\n\n", count)
	return err
}

// visibleTo applies the same scoping as the unread queries: employees see
// broadcasts and notifications addressed to them, admins see everything.
func visibleTo(user *model.User, n *model.Notification) bool {
	if user.Role != model.RoleEmployee {
		return true
	}
	return n.RecipientID == nil || *n.RecipientID == user.ID
}
