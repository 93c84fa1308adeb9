package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is a message shown in the notification panel. A nil
// RecipientID marks a broadcast: it is visible to every user, employee
// and admin alike.
type Notification struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	RecipientID *uuid.UUID `json:"recipient_id,omitempty" gorm:"type:char(36);index"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Message     string     `json:"message" gorm:"type:text"`
	Type        string     `json:"type" gorm:"size:50"`
	IsRead      bool       `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
