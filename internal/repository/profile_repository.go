package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"staffdesk/internal/model"
)

// ProfileRepository defines employee profile persistence operations.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.EmployeeProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.EmployeeProfile, error)
	Update(ctx context.Context, profile *model.EmployeeProfile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository builds a GORM-backed repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.EmployeeProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.EmployeeProfile, error) {
	var profile model.EmployeeProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.EmployeeProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
