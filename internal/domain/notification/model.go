package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Type represents the type of notification
type Type string

const (
	// TypeDeadline marks upcoming-deadline reminders created by the scanner
	TypeDeadline Type = "deadline"
	// TypeSystem marks system-generated notices such as inactivity reminders
	TypeSystem Type = "system"
	// TypeTask marks task-lifecycle events (created, completed)
	TypeTask Type = "task"
)

// Notification represents a notification entity
type Notification struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_notification_user_created,priority:1"`
	Title         string         `json:"title" gorm:"not null"`
	Message       string         `json:"message" gorm:"not null"`
	Type          Type           `json:"type" gorm:"not null;default:'deadline';index"`
	RelatedTaskID *uuid.UUID     `json:"related_task_id,omitempty" gorm:"type:uuid;index"`
	Read          bool           `json:"read" gorm:"not null;default:false"`
	Payload       datatypes.JSON `json:"payload,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null;index:idx_notification_user_created,priority:2,sort:desc"`
}

// BeforeCreate hook to set default values
func (n *Notification) BeforeCreate() error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return nil
}
