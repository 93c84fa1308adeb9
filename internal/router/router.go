package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"staffdesk/internal/config"
	"staffdesk/internal/handler"
	"staffdesk/internal/session"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	resolver *session.Resolver,
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
	notificationHandler *handler.NotificationHandler,
	employeeHandler *handler.EmployeeHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Guarded page shell: the SPA mounts here; the guard applies the
	// role/path decision table before the shell is served.
	e.GET(LoginPath, servePage)
	pages := e.Group("", pageGuard(resolver))
	for _, path := range GuardedPaths() {
		pages.GET(path, servePage)
	}

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Secured routes (require a live provider session)
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			SigningKey:  []byte(cfg.JWTSecret),
			TokenLookup: "header:" + echo.HeaderAuthorization + ",cookie:" + handler.SessionCookieName,
		}),
		identityMiddleware(resolver),
	)

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/me", authHandler.Me)

	// Task routes
	secured.GET("/tasks/mine", taskHandler.ListMine)
	secured.GET("/tasks/statistics", taskHandler.Statistics)
	secured.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)
	secured.GET("/tasks", taskHandler.List, requireAdmin)
	secured.POST("/tasks", taskHandler.Create, requireAdmin)
	secured.PATCH("/tasks/:id", taskHandler.Update, requireAdmin)
	secured.DELETE("/tasks/:id", taskHandler.Delete, requireAdmin)

	// Notification routes
	secured.GET("/notifications", notificationHandler.List)
	secured.GET("/notifications/unread", notificationHandler.ListUnread)
	secured.GET("/notifications/unread/count", notificationHandler.UnreadCount)
	secured.GET("/notifications/stream", notificationHandler.Stream)
	secured.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
	secured.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	secured.POST("/notifications", notificationHandler.Create, requireAdmin)
	secured.DELETE("/notifications/:id", notificationHandler.Delete, requireAdmin)

	// Employee routes
	secured.GET("/employees", employeeHandler.List, requireAdmin)
	secured.GET("/employees/:id/profile", employeeHandler.GetProfile, requireAdmin)
	secured.PUT("/employees/:id/profile", employeeHandler.PutProfile, requireAdmin)
}

// servePage returns the single-page shell; all rendering happens client
// side.
func servePage(c echo.Context) error {
	return c.HTML(http.StatusOK, `<!doctype html><html><head><title>staffdesk</title></head><body><div id="root"></div></body></html>`)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
