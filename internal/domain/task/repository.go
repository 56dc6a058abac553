package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SapotaDA/TaskFlow/internal/infrastructure/persistence/postgres/connection"
)

// ErrNotFound is returned when a task is not found
var ErrNotFound = errors.New("task not found")

// Repository defines the interface for task data access
type Repository interface {
	Create(ctx context.Context, task *Task) error

	GetByID(ctx context.Context, id, userID uuid.UUID) (*Task, error)

	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Task, error)

	Update(ctx context.Context, task *Task) error

	Delete(ctx context.Context, id, userID uuid.UUID) error

	// FindDueBetween returns non-completed tasks whose due date falls in
	// [start, end], both ends inclusive. Tasks without a due date are
	// never returned.
	FindDueBetween(ctx context.Context, start, end time.Time) ([]*Task, error)

	// CountIncomplete counts a user's tasks with status != completed.
	CountIncomplete(ctx context.Context, userID uuid.UUID) (int64, error)
}

type postgresRepository struct {
	db *connection.Database
}

// NewRepository creates a new PostgreSQL task repository
func NewRepository(db *connection.Database) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, task *Task) error {
	if err := task.BeforeCreate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *postgresRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*Task, error) {
	var task Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Task, error) {
	var tasks []*Task
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *postgresRepository) Update(ctx context.Context, task *Task) error {
	task.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Select("title", "description", "status", "priority", "category", "tags", "due_date", "updated_at").
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) FindDueBetween(ctx context.Context, start, end time.Time) ([]*Task, error) {
	var tasks []*Task
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date >= ? AND due_date <= ? AND status <> ?",
			start, end, TaskStatusCompleted).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *postgresRepository) CountIncomplete(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Task{}).
		Where("user_id = ? AND status <> ?", userID, TaskStatusCompleted).
		Count(&count).Error
	return count, err
}
