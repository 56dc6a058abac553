package activity

import (
	"context"

	"github.com/google/uuid"

	"github.com/SapotaDA/TaskFlow/internal/infrastructure/persistence/postgres/connection"
)

// Repository defines the interface for activity data access
type Repository interface {
	Create(ctx context.Context, activity *Activity) error

	GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*Activity, error)
}

type postgresRepository struct {
	db *connection.Database
}

// NewRepository creates a new PostgreSQL activity repository
func NewRepository(db *connection.Database) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, activity *Activity) error {
	if err := activity.BeforeCreate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*Activity, error) {
	var activities []*Activity

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
