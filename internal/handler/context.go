package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"staffdesk/internal/model"
)

// currentUserKey is where the auth middleware stores the resolved user.
const currentUserKey = "currentUser"

// SetCurrentUser stores the resolved user on the request context.
func SetCurrentUser(c echo.Context, user *model.User) {
	c.Set(currentUserKey, user)
}

// CurrentUser returns the user resolved by the auth middleware, or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(currentUserKey).(*model.User)
	return user
}

// recipientScope returns the unread-notification filter for a user:
// employees see their own notifications, admins see everything.
func recipientScope(user *model.User) *uuid.UUID {
	if user != nil && user.Role == model.RoleEmployee {
		id := user.ID
		return &id
	}
	return nil
}
