package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex:idx_user_email;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	// LastSeen is touched asynchronously on every authenticated request.
	LastSeen time.Time `json:"last_seen" gorm:"not null;index:idx_user_last_seen"`
	// InactivityNotifiedAt gates inactivity re-notification: once set it
	// must be at least the creation time of the last inactivity reminder.
	InactivityNotifiedAt *time.Time `json:"inactivity_notified_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt            time.Time  `json:"updated_at" gorm:"not null"`
}

// BeforeCreate hook to set default values
func (u *User) BeforeCreate() error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.LastSeen.IsZero() {
		u.LastSeen = now
	}
	u.UpdatedAt = now
	return nil
}
