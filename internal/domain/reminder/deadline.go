package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SapotaDA/TaskFlow/internal/domain/notification"
	"github.com/SapotaDA/TaskFlow/pkg/logger"
	"github.com/SapotaDA/TaskFlow/pkg/mailer"
)

// DeadlineScanner finds tasks due within the look-ahead window and
// creates at most one deadline notification per (user, task) per
// calendar day.
type DeadlineScanner struct {
	tasks         TaskSource
	users         UserSource
	notifications NotificationStore
	dispatcher    Dispatcher
	logger        *logger.Logger

	lookahead    time.Duration
	emailEnabled bool
	frontendURL  string

	now func() time.Time
}

// DeadlineScannerConfig wires a deadline scanner.
type DeadlineScannerConfig struct {
	Tasks         TaskSource
	Users         UserSource
	Notifications NotificationStore
	Dispatcher    Dispatcher
	Logger        *logger.Logger
	Lookahead     time.Duration
	// EmailEnabled turns on deadline emails. The shipped default is off:
	// the in-app record is always created either way.
	EmailEnabled bool
	FrontendURL  string
}

// NewDeadlineScanner creates a deadline scanner.
func NewDeadlineScanner(cfg DeadlineScannerConfig) *DeadlineScanner {
	lookahead := cfg.Lookahead
	if lookahead <= 0 {
		lookahead = 24 * time.Hour
	}
	return &DeadlineScanner{
		tasks:         cfg.Tasks,
		users:         cfg.Users,
		notifications: cfg.Notifications,
		dispatcher:    cfg.Dispatcher,
		logger:        cfg.Logger,
		lookahead:     lookahead,
		emailEnabled:  cfg.EmailEnabled,
		frontendURL:   cfg.FrontendURL,
		now:           time.Now,
	}
}

// Run executes one scan tick. Per-task failures are logged and skipped;
// the next scheduled run naturally retries via the same query.
func (s *DeadlineScanner) Run(ctx context.Context) error {
	now := s.now()
	windowEnd := now.Add(s.lookahead)
	dedupSince := startOfDay(now)

	tasks, err := s.tasks.FindDueBetween(ctx, now, windowEnd)
	if err != nil {
		return fmt.Errorf("failed to query upcoming tasks: %w", err)
	}

	var created int
	for _, t := range tasks {
		if t.DueDate == nil {
			// The store query excludes these; a nil here means a
			// malformed row. Skip, not fatal.
			continue
		}

		exists, err := s.notifications.ExistsSince(ctx, t.UserID, t.ID, notification.TypeDeadline, dedupSince)
		if err != nil {
			s.logger.Error("Deadline dedup check failed",
				zap.String("task_id", t.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if exists {
			// Already notified today.
			continue
		}

		in := notification.DispatchInput{
			UserID:        t.UserID,
			Title:         "Upcoming Deadline",
			Message:       fmt.Sprintf("Task %q is due soon (%s).", t.Title, t.DueDate.Format("Jan 2, 2006")),
			Type:          notification.TypeDeadline,
			RelatedTaskID: &t.ID,
			Payload: notification.DeadlinePayload{
				TaskID:  t.ID,
				DueDate: *t.DueDate,
			},
		}

		if s.emailEnabled {
			in.Email = s.deadlineEmail(ctx, t.UserID, t.Title, *t.DueDate)
		}

		if _, err := s.dispatcher.Dispatch(ctx, in); err != nil {
			s.logger.Error("Failed to create deadline notification",
				zap.String("task_id", t.ID.String()),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("Deadline notification created",
			zap.String("task_id", t.ID.String()),
			zap.String("task_title", t.Title),
		)
		created++
	}

	s.logger.Info("Deadline scan completed",
		zap.Int("candidates", len(tasks)),
		zap.Int("notifications_created", created),
	)
	return nil
}

// deadlineEmail resolves the owner's address eagerly. A missing or
// unreadable owner skips the email, never the in-app record.
func (s *DeadlineScanner) deadlineEmail(ctx context.Context, userID uuid.UUID, taskTitle string, dueDate time.Time) *notification.EmailRequest {
	if s.users == nil {
		return nil
	}

	owner, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("Could not resolve task owner for deadline email",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil
	}
	if owner.Email == "" {
		return nil
	}

	body := mailer.NotificationTemplate(
		"Upcoming Deadline",
		fmt.Sprintf("Hello %s, your task <strong style=\"color: #3b82f6;\">%s</strong> is due %s. Wrap it up before the clock runs out.",
			owner.Name, taskTitle, dueDate.Format("Jan 2, 2006 15:04")),
		s.frontendURL+"/dashboard",
		"Open Workspace",
	)

	return &notification.EmailRequest{
		To:       owner.Email,
		Subject:  fmt.Sprintf("Deadline approaching: %s", taskTitle),
		HTMLBody: body,
	}
}
