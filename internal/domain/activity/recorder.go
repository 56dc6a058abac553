package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/SapotaDA/TaskFlow/pkg/logger"
)

// Recorder writes audit entries as detached tasks: callers never wait on
// the store, and a logging failure never blocks the triggering action.
type Recorder struct {
	repo   Repository
	logger *logger.Logger
}

// NewRecorder creates a new activity recorder
func NewRecorder(repo Repository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, logger: log}
}

// Record persists an activity entry in the background. Failures are
// logged and swallowed.
func (r *Recorder) Record(userID uuid.UUID, action, details string, metadata map[string]interface{}) {
	var raw datatypes.JSON
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			raw = datatypes.JSON(b)
		}
	}

	entry := &Activity{
		ID:       uuid.New(),
		UserID:   userID,
		Action:   action,
		Details:  details,
		Metadata: raw,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.repo.Create(ctx, entry); err != nil {
			r.logger.Warn("Activity logging failure",
				zap.String("user_id", userID.String()),
				zap.String("action", action),
				zap.Error(err),
			)
		}
	}()
}
