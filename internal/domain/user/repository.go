package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SapotaDA/TaskFlow/internal/infrastructure/persistence/postgres/connection"
)

var (
	// ErrNotFound is returned when a user is not found
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering a duplicate email
	ErrEmailTaken = errors.New("email already registered")
)

// Repository defines the interface for user data access
type Repository interface {
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)

	// FindIdle returns users whose lastSeen is before the threshold and
	// whose inactivity cool-down mark is either unset or itself older
	// than the threshold. The compound condition is both the candidate
	// filter and the re-notify cool-down.
	FindIdle(ctx context.Context, threshold time.Time) ([]*User, error)

	// UpdateLastNotified stamps the inactivity cool-down mark.
	UpdateLastNotified(ctx context.Context, userID uuid.UUID, at time.Time) error

	// TouchLastSeen bumps lastSeen to now.
	TouchLastSeen(ctx context.Context, userID uuid.UUID) error
}

type postgresRepository struct {
	db *connection.Database
}

// NewRepository creates a new PostgreSQL user repository
func NewRepository(db *connection.Database) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, user *User) error {
	if err := user.BeforeCreate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *postgresRepository) FindIdle(ctx context.Context, threshold time.Time) ([]*User, error) {
	var users []*User
	err := r.db.WithContext(ctx).
		Where("last_seen < ? AND (inactivity_notified_at IS NULL OR inactivity_notified_at < ?)",
			threshold, threshold).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresRepository) UpdateLastNotified(ctx context.Context, userID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Update("inactivity_notified_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) TouchLastSeen(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now()).Error
}
