package main

import (
	"net/http"

	"staffdesk/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"staffdesk/internal/auth"
	"staffdesk/internal/cache"
	"staffdesk/internal/config"
	"staffdesk/internal/db"
	"staffdesk/internal/feed"
	"staffdesk/internal/handler"
	"staffdesk/internal/logger"
	"staffdesk/internal/model"
	"staffdesk/internal/repository"
	"staffdesk/internal/router"
	"staffdesk/internal/service"
	"staffdesk/internal/session"
)

// @title Staffdesk API
// @version 1.0
// @description HR and task-tracking API with role-based dashboards, live notifications, and JWT sessions.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.EmployeeProfile{},
		&model.Task{},
		&model.Notification{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	cacheClient := cache.NewFromClient(redisClient)
	bus := feed.NewRedisBus(redisClient)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)
	notificationRepo := repository.NewNotificationRepository(gormDB)

	// Initialize the identity provider client
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	provider := auth.NewRedisProvider(
		auth.NewCredentialStore(redisClient),
		auth.NewSessionStore(cacheClient),
		jwtService,
		bus,
		log,
	)
	resolver := session.NewResolver(provider, userRepo)

	// Initialize services
	authService := service.NewAuthService(userRepo, provider, log)
	taskService := service.NewTaskService(taskRepo)
	notificationService := service.NewNotificationService(notificationRepo, bus, log)
	employeeService := service.NewEmployeeService(userRepo, profileRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)
	notificationHandler := handler.NewNotificationHandler(notificationService, provider, resolver)
	employeeHandler := handler.NewEmployeeHandler(employeeService)

	// Register routes
	router.Register(
		e,
		cfg,
		resolver,
		authHandler,
		taskHandler,
		notificationHandler,
		employeeHandler,
	)

	addr := ":" + cfg.ServerPort
	log.Info().Str("addr", addr).Msg("starting server")
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server start")
	}
}
