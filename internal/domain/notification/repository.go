package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for notification data access
type Repository interface {
	Create(ctx context.Context, notification *Notification) error

	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)

	// ExistsSince reports whether a notification of the given type for the
	// given related task was created for the user at or after `since`.
	// The deadline scanner uses it with the start of the current calendar
	// day to suppress duplicate reminders.
	ExistsSince(ctx context.Context, userID, relatedTaskID uuid.UUID, typ Type, since time.Time) (bool, error)

	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error

	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error

	Delete(ctx context.Context, id, userID uuid.UUID) error

	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}
