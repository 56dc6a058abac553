package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/SapotaDA/TaskFlow/internal/infrastructure/cache"
	"github.com/SapotaDA/TaskFlow/pkg/mailer"
)

// EmailRequest describes the optional second delivery channel of a
// dispatch. A nil request means in-app only.
type EmailRequest struct {
	To       string
	Subject  string
	HTMLBody string
}

// DispatchInput is one decision to notify a user.
type DispatchInput struct {
	UserID        uuid.UUID
	Title         string
	Message       string
	Type          Type
	RelatedTaskID *uuid.UUID
	Payload       Payload
	Email         *EmailRequest
}

// Dispatcher performs the two-channel side effect: persist the in-app
// record first (the UI and the dedup check depend on it), then attempt
// the email. Email failure is logged and absorbed, never returned.
type Dispatcher struct {
	repo   Repository
	sender mailer.Sender
	cache  *cache.RedisClient
	logger *logrus.Logger
}

// NewDispatcher creates a dispatch façade. sender and redis may be nil.
func NewDispatcher(repo Repository, sender mailer.Sender, redis *cache.RedisClient, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		sender: sender,
		cache:  redis,
		logger: logger,
	}
}

// Dispatch persists a notification and best-effort sends the email.
// The returned error reflects only the persistence outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, in DispatchInput) (*Notification, error) {
	payload, err := MarshalPayload(in.Type, in.Payload)
	if err != nil {
		return nil, err
	}

	n := &Notification{
		ID:            uuid.New(),
		UserID:        in.UserID,
		Title:         in.Title,
		Message:       in.Message,
		Type:          in.Type,
		RelatedTaskID: in.RelatedTaskID,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}

	if err := d.repo.Create(ctx, n); err != nil {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": in.UserID,
			"type":    in.Type,
		}).Error("Failed to persist notification")
		return nil, err
	}

	if d.cache != nil {
		d.cache.InvalidateUnreadCount(ctx, in.UserID)
	}

	if in.Email != nil && d.sender != nil {
		if err := d.sender.Send(ctx, in.Email.To, in.Email.Subject, in.Email.HTMLBody); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"user_id": in.UserID,
				"to":      in.Email.To,
			}).Error("Failed to send notification email")
		}
	}

	return n, nil
}
