package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/SapotaDA/TaskFlow/internal/infrastructure/cache"
)

// Service defines the notification read/update surface used by the API
type Service interface {
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)

	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error

	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error

	Delete(ctx context.Context, id, userID uuid.UUID) error

	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// serviceImpl implements the notification Service interface
type serviceImpl struct {
	repo   Repository
	cache  *cache.RedisClient
	logger *logrus.Logger
}

// NewService creates a new notification service. The cache may be nil,
// in which case every count goes to the store.
func NewService(repo Repository, redis *cache.RedisClient, logger *logrus.Logger) Service {
	return &serviceImpl{
		repo:   repo,
		cache:  redis,
		logger: logger,
	}
}

func (s *serviceImpl) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

// MarkAsRead flips the read flag. Acting on someone else's notification
// is ErrForbidden, distinct from ErrNotFound for a missing one.
func (s *serviceImpl) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrForbidden
	}

	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *serviceImpl) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id, userID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// CountUnread serves the badge counter; it is the hottest read, so it is
// the one thing worth caching.
func (s *serviceImpl) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetUnreadCount(ctx, userID)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WithError(err).Warn("Unread count cache read failed")
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cache.SetUnreadCount(ctx, userID, count)
	}
	return count, nil
}

func (s *serviceImpl) invalidateUnread(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateUnreadCount(ctx, userID)
	}
}
