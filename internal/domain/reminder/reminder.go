// Package reminder holds the two background scanners that turn task and
// user state into notifications: the deadline scanner and the inactivity
// scanner. Both are driven by the infrastructure scheduler and both
// isolate per-candidate failures so one bad record never aborts a scan.
package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SapotaDA/TaskFlow/internal/domain/notification"
	"github.com/SapotaDA/TaskFlow/internal/domain/task"
	"github.com/SapotaDA/TaskFlow/internal/domain/user"
)

// TaskSource is the slice of the task store the scanners read.
type TaskSource interface {
	FindDueBetween(ctx context.Context, start, end time.Time) ([]*task.Task, error)
	CountIncomplete(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UserSource is the slice of the user store the inactivity scanner uses.
type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindIdle(ctx context.Context, threshold time.Time) ([]*user.User, error)
	UpdateLastNotified(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// NotificationStore answers the dedup-window query.
type NotificationStore interface {
	ExistsSince(ctx context.Context, userID, relatedTaskID uuid.UUID, typ notification.Type, since time.Time) (bool, error)
}

// Dispatcher performs the two-channel notify side effect.
type Dispatcher interface {
	Dispatch(ctx context.Context, in notification.DispatchInput) (*notification.Notification, error)
}

// ActivityRecorder records audit entries without blocking the scan.
type ActivityRecorder interface {
	Record(userID uuid.UUID, action, details string, metadata map[string]interface{})
}

// startOfDay truncates t to midnight in its own location. Computed once
// per scan run so tasks processed either side of midnight share one
// dedup window.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
