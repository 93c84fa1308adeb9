package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "staffdesk/internal/errors"
	"staffdesk/internal/model"
	"staffdesk/internal/repository"
)

// ProfileInput carries the HR attributes of an employee profile.
type ProfileInput struct {
	Department string
	Position   string
	Salary     decimal.Decimal
	JoinDate   *time.Time
}

// EmployeeService exposes the employee directory and profiles.
type EmployeeService interface {
	ListEmployees(ctx context.Context) ([]model.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.EmployeeProfile, error)
	// UpsertProfile creates the profile on first write and updates it after.
	UpsertProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*model.EmployeeProfile, error)
}

type employeeService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
}

// NewEmployeeService builds an EmployeeService over the repositories.
func NewEmployeeService(users repository.UserRepository, profiles repository.ProfileRepository) EmployeeService {
	return &employeeService{users: users, profiles: profiles}
}

func (s *employeeService) ListEmployees(ctx context.Context) ([]model.User, error) {
	return s.users.ListEmployees(ctx)
}

func (s *employeeService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.EmployeeProfile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

func (s *employeeService) UpsertProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*model.EmployeeProfile, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	switch {
	case err == gorm.ErrRecordNotFound:
		profile = &model.EmployeeProfile{
			ID:         uuid.New(),
			UserID:     userID,
			Department: input.Department,
			Position:   input.Position,
			Salary:     input.Salary,
			JoinDate:   input.JoinDate,
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		return profile, nil
	case err != nil:
		return nil, fmt.Errorf("load profile: %w", err)
	}

	profile.Department = input.Department
	profile.Position = input.Position
	profile.Salary = input.Salary
	profile.JoinDate = input.JoinDate
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}
