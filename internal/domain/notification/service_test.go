package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRejectsForeignNotification(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	n := &Notification{ID: uuid.New(), UserID: owner, Title: "Upcoming Deadline", Message: "due soon", Type: TypeDeadline}

	repo := &stubRepo{created: []*Notification{n}}
	svc := NewService(repo, nil, quietLogrus())

	assert.ErrorIs(t, svc.MarkAsRead(context.Background(), n.ID, stranger), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), n.ID, stranger), ErrForbidden)

	// The owner is unaffected by the check.
	require.NoError(t, svc.MarkAsRead(context.Background(), n.ID, owner))
	require.NoError(t, svc.Delete(context.Background(), n.ID, owner))
}

func TestServiceMissingNotificationIsNotFound(t *testing.T) {
	svc := NewService(&stubRepo{}, nil, quietLogrus())

	assert.ErrorIs(t, svc.MarkAsRead(context.Background(), uuid.New(), uuid.New()), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New(), uuid.New()), ErrNotFound)
}
