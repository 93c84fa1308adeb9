package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"staffdesk/internal/errors"
	"staffdesk/internal/handler"
	"staffdesk/internal/model"
	"staffdesk/internal/session"
)

// identityMiddleware resolves the bearer token into the application user
// and stores it on the request context. It runs after the JWT middleware,
// which has already rejected unsigned tokens; this adds the session-store
// check (revocation) and the application-row lookup.
func identityMiddleware(resolver *session.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := handler.BearerToken(c)
			if token == "" {
				token = handler.SessionCookie(c)
			}
			user, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "no active session",
					Code:  "NO_SESSION",
				})
			}
			handler.SetCurrentUser(c, user)
			return next(c)
		}
	}
}

// requireAdmin rejects non-admin callers.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := handler.CurrentUser(c)
		if user == nil || user.Role != model.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "admin role required",
				Code:  "FORBIDDEN",
			})
		}
		return next(c)
	}
}

// pageGuard applies the route-guard decision table to page navigations.
// Unauthenticated visitors land on the login page; authenticated ones are
// redirected according to their role.
func pageGuard(resolver *session.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := handler.SessionCookie(c)
			if token == "" {
				token = handler.BearerToken(c)
			}

			user, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				return c.Redirect(http.StatusFound, LoginPath)
			}

			if redirect := RedirectFor(user.Role, c.Request().URL.Path); redirect != "" {
				return c.Redirect(http.StatusFound, redirect)
			}
			return next(c)
		}
	}
}
