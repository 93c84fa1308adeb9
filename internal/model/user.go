package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role determines which dashboard and operations a user may reach.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role is one of the two known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is the application-level identity record. Its password hash is
// distinct from the credential held by the identity provider; the provider
// stores a synthetic password derived from this row's ID.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FullName     string    `json:"full_name" gorm:"size:255;not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'employee';index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Profile *EmployeeProfile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
