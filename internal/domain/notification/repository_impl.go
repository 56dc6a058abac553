package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/SapotaDA/TaskFlow/internal/infrastructure/persistence/postgres/connection"
)

// postgresRepository implements the Repository interface for PostgreSQL
type postgresRepository struct {
	db     *connection.Database
	logger *logrus.Logger
}

// NewRepository creates a new PostgreSQL notification repository
func NewRepository(db *connection.Database, logger *logrus.Logger) Repository {
	return &postgresRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new notification
func (r *postgresRepository) Create(ctx context.Context, notification *Notification) error {
	if err := notification.BeforeCreate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create notification")
		return err
	}
	return nil
}

// GetByID retrieves a notification by its ID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var notification Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// GetByUserID retrieves all notifications for a user, unread first
func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	var notifications []*Notification

	query := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ?", userID).
		Order("read ASC, created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// ExistsSince checks for an existing notification in the dedup window
func (r *postgresRepository) ExistsSince(ctx context.Context, userID, relatedTaskID uuid.UUID, typ Type, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND related_task_id = ? AND type = ? AND created_at >= ?",
			userID, relatedTaskID, typ, since).
		Count(&count).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to query notification dedup window")
		return false, err
	}
	return count > 0, nil
}

// MarkAsRead marks a notification as read, scoped to its owner
func (r *postgresRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllAsRead marks all unread notifications as read for a user
func (r *postgresRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// Delete removes a notification, scoped to its owner
func (r *postgresRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread counts unread notifications for a user
func (r *postgresRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
