package notification

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	mu        sync.Mutex
	created   []*Notification
	createErr error
	onCreate  func()
}

func (r *stubRepo) Create(ctx context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.onCreate != nil {
		r.onCreate()
	}
	r.created = append(r.created, n)
	return nil
}

func (r *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.created {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, ErrNotFound
}

func (r *stubRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return nil, nil
}

func (r *stubRepo) ExistsSince(ctx context.Context, userID, relatedTaskID uuid.UUID, typ Type, since time.Time) (bool, error) {
	return false, nil
}

func (r *stubRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error    { return nil }
func (r *stubRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error     { return nil }
func (r *stubRepo) Delete(ctx context.Context, id, userID uuid.UUID) error        { return nil }
func (r *stubRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) { return 0, nil }

type stubSender struct {
	mu     sync.Mutex
	sent   []string
	err    error
	onSend func()
}

func (s *stubSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onSend != nil {
		s.onSend()
	}
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func quietLogrus() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestDispatchPersistsBeforeEmail(t *testing.T) {
	var order []string
	repo := &stubRepo{onCreate: func() { order = append(order, "persist") }}
	sender := &stubSender{onSend: func() { order = append(order, "email") }}
	d := NewDispatcher(repo, sender, nil, quietLogrus())

	userID := uuid.New()
	n, err := d.Dispatch(context.Background(), DispatchInput{
		UserID:  userID,
		Title:   "Upcoming Deadline",
		Message: "Task \"Ship report\" is due soon.",
		Type:    TypeDeadline,
		Email:   &EmailRequest{To: "owner@example.com", Subject: "Deadline approaching", HTMLBody: "<p>hi</p>"},
	})
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, []string{"persist", "email"}, order)
	assert.Equal(t, userID, n.UserID)
	assert.NotEqual(t, uuid.Nil, n.ID)
	require.Len(t, repo.created, 1)
	assert.Equal(t, []string{"owner@example.com"}, sender.sent)
}

func TestDispatchAbsorbsEmailFailure(t *testing.T) {
	repo := &stubRepo{}
	sender := &stubSender{err: errors.New("smtp: connection refused")}
	d := NewDispatcher(repo, sender, nil, quietLogrus())

	n, err := d.Dispatch(context.Background(), DispatchInput{
		UserID:  uuid.New(),
		Title:   "Workspace Pulse: Tasks Awaiting",
		Message: "You have 3 tasks pending.",
		Type:    TypeSystem,
		Payload: InactivityPayload{PendingTasks: 3},
		Email:   &EmailRequest{To: "idle@example.com", Subject: "Reminder: Continue Your Tasks", HTMLBody: "<p>hi</p>"},
	})

	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Len(t, repo.created, 1)
}

func TestDispatchRepoFailureSkipsEmail(t *testing.T) {
	repo := &stubRepo{createErr: errors.New("pq: connection reset")}
	sender := &stubSender{}
	d := NewDispatcher(repo, sender, nil, quietLogrus())

	n, err := d.Dispatch(context.Background(), DispatchInput{
		UserID:  uuid.New(),
		Title:   "Upcoming Deadline",
		Message: "due soon",
		Type:    TypeDeadline,
		Email:   &EmailRequest{To: "owner@example.com", Subject: "x", HTMLBody: "y"},
	})

	assert.Error(t, err)
	assert.Nil(t, n)
	assert.Empty(t, sender.sent)
}

func TestDispatchRejectsMismatchedPayload(t *testing.T) {
	repo := &stubRepo{}
	d := NewDispatcher(repo, nil, nil, quietLogrus())

	_, err := d.Dispatch(context.Background(), DispatchInput{
		UserID:  uuid.New(),
		Title:   "x",
		Message: "y",
		Type:    TypeDeadline,
		Payload: InactivityPayload{PendingTasks: 1},
	})

	assert.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestDispatchWithoutSender(t *testing.T) {
	repo := &stubRepo{}
	d := NewDispatcher(repo, nil, nil, quietLogrus())

	n, err := d.Dispatch(context.Background(), DispatchInput{
		UserID:  uuid.New(),
		Title:   "x",
		Message: "y",
		Type:    TypeSystem,
		Email:   &EmailRequest{To: "idle@example.com", Subject: "s", HTMLBody: "b"},
	})

	require.NoError(t, err)
	assert.NotNil(t, n)
	assert.Len(t, repo.created, 1)
}
