package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"staffdesk/internal/auth"
	"staffdesk/internal/cache"
	"staffdesk/internal/config"
	"staffdesk/internal/db"
	"staffdesk/internal/feed"
	"staffdesk/internal/logger"
	"staffdesk/internal/model"
	"staffdesk/internal/repository"
	"staffdesk/internal/service"
)

type seedEmployee struct {
	email      string
	name       string
	department string
	position   string
	salary     string
	joined     string
}

var seedEmployees = []seedEmployee{
	{"maria.santos@staffdesk.local", "Maria Santos", "Engineering", "Backend Engineer", "72000.00", "2023-02-13"},
	{"james.okafor@staffdesk.local", "James Okafor", "Engineering", "Frontend Engineer", "68000.00", "2023-06-01"},
	{"lena.fischer@staffdesk.local", "Lena Fischer", "People Ops", "HR Generalist", "54000.00", "2022-11-21"},
	{"noah.tran@staffdesk.local", "Noah Tran", "Finance", "Accountant", "61000.00", "2024-01-08"},
}

var seedTaskTitles = []string{
	"Prepare quarterly headcount report",
	"Review onboarding checklist",
	"Update payroll export",
	"Audit leave balances",
}

const (
	adminEmail    = "admin@staffdesk.local"
	seedPassword  = "changeme123"
	adminFullName = "Site Admin"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.EmployeeProfile{},
		&model.Task{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	zl := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	provider := auth.NewRedisProvider(
		auth.NewCredentialStore(redisClient),
		auth.NewSessionStore(cache.NewFromClient(redisClient)),
		auth.NewJWTService(cfg.JWTSecret),
		feed.NewRedisBus(redisClient),
		zl,
	)

	userRepo := repository.NewUserRepository(gormDB)
	profileRepo := repository.NewProfileRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)

	authService := service.NewAuthService(userRepo, provider, zl)
	employeeService := service.NewEmployeeService(userRepo, profileRepo)
	taskService := service.NewTaskService(taskRepo)

	ctx := context.Background()

	admin, created, err := ensureUser(ctx, userRepo, authService, adminEmail, adminFullName, model.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	logUser("admin", adminEmail, created)

	var employees []*model.User
	for _, e := range seedEmployees {
		user, created, err := ensureUser(ctx, userRepo, authService, e.email, e.name, model.RoleEmployee)
		if err != nil {
			log.Fatalf("Failed to seed employee %s: %v", e.email, err)
		}
		logUser("employee", e.email, created)
		employees = append(employees, user)

		if created {
			salary, err := decimal.NewFromString(e.salary)
			if err != nil {
				log.Fatalf("Invalid seed salary for %s: %v", e.email, err)
			}
			joined, err := time.Parse("2006-01-02", e.joined)
			if err != nil {
				log.Fatalf("Invalid seed join date for %s: %v", e.email, err)
			}
			if _, err := employeeService.UpsertProfile(ctx, user.ID, service.ProfileInput{
				Department: e.department,
				Position:   e.position,
				Salary:     salary,
				JoinDate:   &joined,
			}); err != nil {
				log.Fatalf("Failed to seed profile for %s: %v", e.email, err)
			}
		}
	}

	seededTasks := 0
	for i, title := range seedTaskTitles {
		assignee := employees[i%len(employees)]
		if _, err := taskService.CreateTask(ctx, service.CreateTaskInput{
			Title:      title,
			AssignedTo: assignee.ID,
			CreatedBy:  admin.ID,
			Priority:   model.TaskPriorityMedium,
		}); err != nil {
			log.Fatalf("Failed to seed task %q: %v", title, err)
		}
		seededTasks++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Users present: %d (1 admin, %d employees)", len(employees)+1, len(employees))
	log.Printf("  - Tasks created this run: %d", seededTasks)
	log.Printf("  - Login with %s / %s", adminEmail, seedPassword)
}

// ensureUser registers the user unless a row already exists.
func ensureUser(ctx context.Context, repo repository.UserRepository, authService service.AuthService, email, name string, role model.Role) (*model.User, bool, error) {
	existing, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	_, user, err := authService.Register(ctx, email, seedPassword, name, role)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func logUser(kind, email string, created bool) {
	if created {
		log.Printf("Created %s %s", kind, email)
	} else {
		log.Printf("Existing %s %s, skipping", kind, email)
	}
}
