package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity is one entry in a user's audit trail
type Activity struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_activity_user_created,priority:1"`
	Action    string         `json:"action" gorm:"not null"`
	Details   string         `json:"details"`
	Metadata  datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null;index:idx_activity_user_created,priority:2,sort:desc"`
}

// BeforeCreate hook to set default values
func (a *Activity) BeforeCreate() error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}
