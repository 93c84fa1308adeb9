package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EmployeeProfile holds the HR attributes of an employee, kept apart from
// the identity record so registration does not require them.
type EmployeeProfile struct {
	ID         uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID       `json:"user_id" gorm:"type:char(36);uniqueIndex;not null"`
	Department string          `json:"department" gorm:"size:255"`
	Position   string          `json:"position" gorm:"size:255"`
	Salary     decimal.Decimal `json:"salary" gorm:"type:decimal(20,2)"`
	JoinDate   *time.Time      `json:"join_date,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *EmployeeProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
