package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SapotaDA/TaskFlow/internal/domain/notification"
	"github.com/SapotaDA/TaskFlow/pkg/logger"
)

// Notifier is the slice of the dispatch façade the task service needs.
type Notifier interface {
	Dispatch(ctx context.Context, in notification.DispatchInput) (*notification.Notification, error)
}

// ActivityRecorder records audit-trail entries without blocking.
type ActivityRecorder interface {
	Record(userID uuid.UUID, action, details string, metadata map[string]interface{})
}

// CreateTaskInput is the validated input for creating a task
type CreateTaskInput struct {
	UserID      uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	Category    string
	Tags        []string
	DueDate     *time.Time
}

// UpdateTaskInput carries the fields an owner may change
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	Category    *string
	Tags        []string
	DueDate     *time.Time
	ClearDue    bool
}

// Service defines the task service interface
type Service interface {
	Create(ctx context.Context, input CreateTaskInput) (*Task, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*Task, error)
	List(ctx context.Context, userID uuid.UUID) ([]*Task, error)
	Update(ctx context.Context, id, userID uuid.UUID, input UpdateTaskInput) (*Task, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type service struct {
	repo       Repository
	notifier   Notifier
	activities ActivityRecorder
	logger     *logger.Logger
}

// NewService creates a new task service. notifier and activities may be nil.
func NewService(repo Repository, notifier Notifier, activities ActivityRecorder, log *logger.Logger) Service {
	return &service{
		repo:       repo,
		notifier:   notifier,
		activities: activities,
		logger:     log,
	}
}

func (s *service) Create(ctx context.Context, input CreateTaskInput) (*Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, fmt.Errorf("invalid task status %q", input.Status)
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, fmt.Errorf("invalid task priority %q", input.Priority)
	}

	t := &Task{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Category:    input.Category,
		Tags:        input.Tags,
		DueDate:     input.DueDate,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.notifyTaskEvent(ctx, t, "created", "Task Created",
		fmt.Sprintf("Task %q has been added to your workspace.", t.Title))
	if s.activities != nil {
		s.activities.Record(t.UserID, "TASK_INITIALIZED", fmt.Sprintf("Task %q created.", t.Title), map[string]interface{}{
			"task_id": t.ID.String(),
		})
	}

	return t, nil
}

func (s *service) GetByID(ctx context.Context, id, userID uuid.UUID) (*Task, error) {
	return s.repo.GetByID(ctx, id, userID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]*Task, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, input UpdateTaskInput) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	wasCompleted := t.Status == TaskStatusCompleted

	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("invalid task status %q", *input.Status)
		}
		t.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, fmt.Errorf("invalid task priority %q", *input.Priority)
		}
		t.Priority = *input.Priority
	}
	if input.Category != nil {
		t.Category = *input.Category
	}
	if input.Tags != nil {
		t.Tags = input.Tags
	}
	if input.ClearDue {
		t.DueDate = nil
	} else if input.DueDate != nil {
		t.DueDate = input.DueDate
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	if !wasCompleted && t.Status == TaskStatusCompleted {
		s.notifyTaskEvent(ctx, t, "completed", "Task Completed",
			fmt.Sprintf("Nice work! Task %q is done.", t.Title))
		if s.activities != nil {
			s.activities.Record(t.UserID, "TASK_COMPLETED", fmt.Sprintf("Task %q completed.", t.Title), map[string]interface{}{
				"task_id": t.ID.String(),
			})
		}
	}

	return t, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.Delete(ctx, id, userID)
}

// notifyTaskEvent creates the in-app record for a task lifecycle event.
// These are in-app only; failures never surface to the request.
func (s *service) notifyTaskEvent(ctx context.Context, t *Task, event, title, message string) {
	if s.notifier == nil {
		return
	}
	taskID := t.ID
	_, err := s.notifier.Dispatch(ctx, notification.DispatchInput{
		UserID:        t.UserID,
		Title:         title,
		Message:       message,
		Type:          notification.TypeTask,
		RelatedTaskID: &taskID,
		Payload:       notification.TaskEventPayload{TaskID: t.ID, Event: event},
	})
	if err != nil {
		s.logger.Error("Failed to create task event notification",
			zap.String("task_id", t.ID.String()),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}
