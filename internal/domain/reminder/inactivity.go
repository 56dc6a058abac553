package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SapotaDA/TaskFlow/internal/domain/notification"
	"github.com/SapotaDA/TaskFlow/pkg/logger"
	"github.com/SapotaDA/TaskFlow/pkg/mailer"
)

// InactivityScanner reminds idle users about their pending work. A user
// is a candidate when their lastSeen is older than the idle threshold
// and their cool-down mark is unset or older than the same threshold.
type InactivityScanner struct {
	users      UserSource
	tasks      TaskSource
	dispatcher Dispatcher
	activities ActivityRecorder
	logger     *logger.Logger

	idleThreshold time.Duration
	frontendURL   string

	now func() time.Time
}

// InactivityScannerConfig wires an inactivity scanner.
type InactivityScannerConfig struct {
	Users         UserSource
	Tasks         TaskSource
	Dispatcher    Dispatcher
	Activities    ActivityRecorder
	Logger        *logger.Logger
	IdleThreshold time.Duration
	FrontendURL   string
}

// NewInactivityScanner creates an inactivity scanner.
func NewInactivityScanner(cfg InactivityScannerConfig) *InactivityScanner {
	threshold := cfg.IdleThreshold
	if threshold <= 0 {
		threshold = 2 * time.Hour
	}
	return &InactivityScanner{
		users:         cfg.Users,
		tasks:         cfg.Tasks,
		dispatcher:    cfg.Dispatcher,
		activities:    cfg.Activities,
		logger:        cfg.Logger,
		idleThreshold: threshold,
		frontendURL:   cfg.FrontendURL,
		now:           time.Now,
	}
}

// Run executes one scan tick. Per-user failures are isolated.
//
// The cool-down stamp is written once the in-app notification exists,
// regardless of the email outcome: the dispatcher absorbs email errors,
// so a permanently broken mailer cannot pile up duplicate in-app
// reminders tick after tick.
func (s *InactivityScanner) Run(ctx context.Context) error {
	now := s.now()
	threshold := now.Add(-s.idleThreshold)

	users, err := s.users.FindIdle(ctx, threshold)
	if err != nil {
		return fmt.Errorf("failed to query idle users: %w", err)
	}

	var notified int
	for _, u := range users {
		pending, err := s.tasks.CountIncomplete(ctx, u.ID)
		if err != nil {
			s.logger.Error("Pending task count failed",
				zap.String("user_id", u.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if pending == 0 {
			// Nothing awaiting them: no notification, no state change.
			continue
		}

		in := notification.DispatchInput{
			UserID: u.ID,
			Title:  "Workspace Pulse: Tasks Awaiting",
			Message: fmt.Sprintf(
				"It looks like you've been away. You have %d tasks synchronization pending. Log back in to stay on track.",
				pending),
			Type:    notification.TypeSystem,
			Payload: notification.InactivityPayload{PendingTasks: pending},
		}

		if u.Email != "" {
			in.Email = &notification.EmailRequest{
				To:      u.Email,
				Subject: "Reminder: Continue Your Tasks",
				HTMLBody: mailer.NotificationTemplate(
					"Workflow Interrupted",
					fmt.Sprintf(
						"Hello %s, your workspace has been idle for a while. You have <strong style=\"color: #3b82f6;\">%d tasks</strong> awaiting your attention. Re-synchronize with TaskFlow to maintain peak productivity.",
						u.Name, pending),
					s.frontendURL+"/dashboard",
					"Re-engage Workspace",
				),
			}
		}

		if _, err := s.dispatcher.Dispatch(ctx, in); err != nil {
			s.logger.Error("Failed to create inactivity notification",
				zap.String("user_id", u.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if err := s.users.UpdateLastNotified(ctx, u.ID, now); err != nil {
			// The notification exists but the cool-down mark failed; the
			// user may be re-notified next tick. Logged, not fatal.
			s.logger.Error("Failed to stamp inactivity cool-down",
				zap.String("user_id", u.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if s.activities != nil {
			s.activities.Record(u.ID, "INACTIVITY_REMINDER",
				"System dispatched inactivity reminder via email.", nil)
		}

		s.logger.Info("Inactivity notification dispatched",
			zap.String("user_id", u.ID.String()),
			zap.Int64("pending_tasks", pending),
		)
		notified++
	}

	s.logger.Info("Inactivity scan completed",
		zap.Int("candidates", len(users)),
		zap.Int("users_notified", notified),
	)
	return nil
}
