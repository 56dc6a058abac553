package reminder

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

	"github.com/SapotaDA/TaskFlow/internal/domain/notification"
	"github.com/SapotaDA/TaskFlow/internal/domain/task"
	"github.com/SapotaDA/TaskFlow/internal/domain/user"
	"github.com/SapotaDA/TaskFlow/pkg/logger"
	"github.com/SapotaDA/TaskFlow/pkg/mailer"
)

// fakeTasks mirrors the store's query contract: both window ends
// inclusive, completed tasks excluded.
type fakeTasks struct {
	tasks   []*task.Task
	pending map[uuid.UUID]int64
}

func (f *fakeTasks) FindDueBetween(ctx context.Context, start, end time.Time) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range f.tasks {
		if t.DueDate == nil || t.Status == task.TaskStatusCompleted {
			continue
		}
		if t.DueDate.Before(start) || t.DueDate.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTasks) CountIncomplete(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.pending[userID], nil
}

// fakeUsers mirrors the idle query: lastSeen below the threshold and a
// cool-down mark that is unset or also below it.
type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*user.User
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[uuid.UUID]*user.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindIdle(ctx context.Context, threshold time.Time) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*user.User
	for _, u := range f.byID {
		if !u.LastSeen.Before(threshold) {
			continue
		}
		if u.InactivityNotifiedAt != nil && !u.InactivityNotifiedAt.Before(threshold) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) UpdateLastNotified(ctx context.Context, userID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrNotFound
	}
	stamped := at
	u.InactivityNotifiedAt = &stamped
	return nil
}

// memRepo is an in-memory notification.Repository so the scanners run
// against the real dispatcher and the real dedup query semantics.
type memRepo struct {
	mu    sync.Mutex
	items []*notification.Notification
}

func (m *memRepo) Create(ctx context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, n)
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	return nil, notification.ErrNotFound
}

func (m *memRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	return nil, nil
}

func (m *memRepo) ExistsSince(ctx context.Context, userID, relatedTaskID uuid.UUID, typ notification.Type, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.UserID != userID || n.Type != typ {
			continue
		}
		if n.RelatedTaskID == nil || *n.RelatedTaskID != relatedTaskID {
			continue
		}
		if !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error    { return nil }
func (m *memRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error     { return nil }
func (m *memRepo) Delete(ctx context.Context, id, userID uuid.UUID) error        { return nil }
func (m *memRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) { return 0, nil }

func (m *memRepo) all() []*notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*notification.Notification(nil), m.items...)
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

type recordedActivity struct {
	userID uuid.UUID
	action string
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (f *fakeRecorder) Record(userID uuid.UUID, action, details string, metadata map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedActivity{userID: userID, action: action})
}

func quietLogrus() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func due(t time.Time) *time.Time { return &t }

// asSender avoids handing the dispatcher a typed nil.
func asSender(s *fakeSender) mailer.Sender {
	if s == nil {
		return nil
	}
	return s
}

func newDeadlineFixture(tasks *fakeTasks, users *fakeUsers, sender *fakeSender, emailEnabled bool) (*DeadlineScanner, *memRepo) {
	repo := &memRepo{}
	s := NewDeadlineScanner(DeadlineScannerConfig{
		Tasks:         tasks,
		Users:         users,
		Notifications: repo,
		Dispatcher:    notification.NewDispatcher(repo, asSender(sender), nil, quietLogrus()),
		Logger:        logger.NewNop(),
		EmailEnabled:  emailEnabled,
		FrontendURL:   "http://localhost:5173",
	})
	return s, repo
}

func TestDeadlineScannerWindowBoundaries(t *testing.T) {
	base := time.Now()
	userID := uuid.New()

	justBefore := &task.Task{ID: uuid.New(), UserID: userID, Title: "just before", Status: task.TaskStatusPending, DueDate: due(base.Add(-time.Second))}
	atStart := &task.Task{ID: uuid.New(), UserID: userID, Title: "at start", Status: task.TaskStatusPending, DueDate: due(base)}
	atEnd := &task.Task{ID: uuid.New(), UserID: userID, Title: "at end", Status: task.TaskStatusPending, DueDate: due(base.Add(24 * time.Hour))}
	justAfter := &task.Task{ID: uuid.New(), UserID: userID, Title: "just after", Status: task.TaskStatusPending, DueDate: due(base.Add(24*time.Hour + time.Second))}

	tasks := &fakeTasks{tasks: []*task.Task{justBefore, atStart, atEnd, justAfter}}
	s, repo := newDeadlineFixture(tasks, newFakeUsers(), nil, false)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Run(context.Background()))

	got := repo.all()
	require.Len(t, got, 2)
	notified := map[uuid.UUID]bool{}
	for _, n := range got {
		require.NotNil(t, n.RelatedTaskID)
		notified[*n.RelatedTaskID] = true
	}
	assert.True(t, notified[atStart.ID])
	assert.True(t, notified[atEnd.ID])
	assert.False(t, notified[justBefore.ID])
	assert.False(t, notified[justAfter.ID])
}

func TestDeadlineScannerSkipsCompletedTasks(t *testing.T) {
	base := time.Now()
	userID := uuid.New()
	dueAt := base.Add(2 * time.Hour)

	pending := &task.Task{ID: uuid.New(), UserID: userID, Title: "write summary", Status: task.TaskStatusPending, DueDate: due(dueAt)}
	completed := &task.Task{ID: uuid.New(), UserID: userID, Title: "send invoice", Status: task.TaskStatusCompleted, DueDate: due(dueAt)}

	tasks := &fakeTasks{tasks: []*task.Task{pending, completed}}
	s, repo := newDeadlineFixture(tasks, newFakeUsers(), nil, false)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Run(context.Background()))

	got := repo.all()
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, *got[0].RelatedTaskID)
}

func TestDeadlineScannerOncePerCalendarDay(t *testing.T) {
	base := time.Now()
	userID := uuid.New()
	tk := &task.Task{ID: uuid.New(), UserID: userID, Title: "quarterly report", Status: task.TaskStatusInProgress, DueDate: due(base.Add(3 * time.Hour))}

	tasks := &fakeTasks{tasks: []*task.Task{tk}}
	s, repo := newDeadlineFixture(tasks, newFakeUsers(), nil, false)
	s.now = func() time.Time { return base }

	// Two runs within the same day create exactly one notification.
	require.NoError(t, s.Run(context.Background()))
	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, repo.all(), 1)
}

func TestDeadlineScannerNotificationContent(t *testing.T) {
	base := time.Now()
	userID := uuid.New()
	dueAt := base.Add(5 * time.Hour)
	tk := &task.Task{ID: uuid.New(), UserID: userID, Title: "Ship report", Status: task.TaskStatusPending, DueDate: due(dueAt)}

	s, repo := newDeadlineFixture(&fakeTasks{tasks: []*task.Task{tk}}, newFakeUsers(), nil, false)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Run(context.Background()))

	got := repo.all()
	require.Len(t, got, 1)
	n := got[0]
	assert.Equal(t, "Upcoming Deadline", n.Title)
	assert.Contains(t, n.Message, `Task "Ship report" is due soon`)
	assert.Contains(t, n.Message, dueAt.Format("Jan 2, 2006"))
	assert.Equal(t, notification.TypeDeadline, n.Type)

	payload, err := n.DecodePayload()
	require.NoError(t, err)
	dp, ok := payload.(notification.DeadlinePayload)
	require.True(t, ok)
	assert.Equal(t, tk.ID, dp.TaskID)
}

func TestDeadlineScannerEmailFailureKeepsRecord(t *testing.T) {
	base := time.Now()
	owner := &user.User{ID: uuid.New(), Name: "Dana", Email: "dana@example.com", LastSeen: base}
	tk := &task.Task{ID: uuid.New(), UserID: owner.ID, Title: "Ship report", Status: task.TaskStatusPending, DueDate: due(base.Add(2 * time.Hour))}

	sender := &fakeSender{err: errors.New("smtp: connection refused")}
	s, repo := newDeadlineFixture(&fakeTasks{tasks: []*task.Task{tk}}, newFakeUsers(owner), sender, true)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, repo.all(), 1)
}

func TestDeadlineScannerSendsEmailWhenEnabled(t *testing.T) {
	base := time.Now()
	owner := &user.User{ID: uuid.New(), Name: "Dana", Email: "dana@example.com", LastSeen: base}
	tk := &task.Task{ID: uuid.New(), UserID: owner.ID, Title: "Ship report", Status: task.TaskStatusPending, DueDate: due(base.Add(2 * time.Hour))}

	sender := &fakeSender{}
	s, repo := newDeadlineFixture(&fakeTasks{tasks: []*task.Task{tk}}, newFakeUsers(owner), sender, true)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, repo.all(), 1)
	assert.Equal(t, []string{"dana@example.com"}, sender.sent)
}

func newInactivityFixture(users *fakeUsers, tasks *fakeTasks, sender *fakeSender) (*InactivityScanner, *memRepo, *fakeRecorder) {
	repo := &memRepo{}
	rec := &fakeRecorder{}
	s := NewInactivityScanner(InactivityScannerConfig{
		Users:       users,
		Tasks:       tasks,
		Dispatcher:  notification.NewDispatcher(repo, asSender(sender), nil, quietLogrus()),
		Activities:  rec,
		Logger:      logger.NewNop(),
		FrontendURL: "http://localhost:5173",
	})
	return s, repo, rec
}

func TestInactivityScannerNotifiesIdleUser(t *testing.T) {
	base := time.Now()
	idle := &user.User{ID: uuid.New(), Name: "Dana", Email: "dana@example.com", LastSeen: base.Add(-3 * time.Hour)}
	users := newFakeUsers(idle)
	tasks := &fakeTasks{pending: map[uuid.UUID]int64{idle.ID: 4}}

	sender := &fakeSender{}
	s, repo, rec := newInactivityFixture(users, tasks, sender)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Run(context.Background()))

	got := repo.all()
	require.Len(t, got, 1)
	assert.Equal(t, "Workspace Pulse: Tasks Awaiting", got[0].Title)
	assert.Contains(t, got[0].Message, "4 tasks")
	assert.Equal(t, notification.TypeSystem, got[0].Type)

	require.NotNil(t, idle.InactivityNotifiedAt)
	assert.True(t, idle.InactivityNotifiedAt.Equal(base))

	assert.Equal(t, []string{"dana@example.com"}, sender.sent)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "INACTIVITY_REMINDER", rec.entries[0].action)
	assert.Equal(t, idle.ID, rec.entries[0].userID)
}

func TestInactivityScannerCoolDown(t *testing.T) {
	base := time.Now()

	tests := []struct {
		name         string
		lastNotified time.Duration
		wantNotify   bool
	}{
		{"notified 30 minutes ago", -30 * time.Minute, false},
		{"notified 150 minutes ago", -150 * time.Minute, true},
		{"notified 200 minutes ago", -200 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notified := base.Add(tt.lastNotified)
			idle := &user.User{
				ID:                   uuid.New(),
				Name:                 "Dana",
				Email:                "dana@example.com",
				LastSeen:             base.Add(-3 * time.Hour),
				InactivityNotifiedAt: &notified,
			}
			users := newFakeUsers(idle)
			tasks := &fakeTasks{pending: map[uuid.UUID]int64{idle.ID: 2}}

			s, repo, _ := newInactivityFixture(users, tasks, nil)
			s.now = func() time.Time { return base }

			require.NoError(t, s.Run(context.Background()))

			if tt.wantNotify {
				assert.Len(t, repo.all(), 1)
			} else {
				assert.Empty(t, repo.all())
			}
		})
	}
}

func TestInactivityScannerSkipsActiveUser(t *testing.T) {
	base := time.Now()
	active := &user.User{ID: uuid.New(), Name: "Dana", LastSeen: base.Add(-30 * time.Minute)}
	users := newFakeUsers(active)
	tasks := &fakeTasks{pending: map[uuid.UUID]int64{active.ID: 5}}

	s, repo, _ := newInactivityFixture(users, tasks, nil)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, repo.all())
	assert.Nil(t, active.InactivityNotifiedAt)
}

func TestInactivityScannerSkipsUserWithNoPendingTasks(t *testing.T) {
	base := time.Now()
	idle := &user.User{ID: uuid.New(), Name: "Dana", LastSeen: base.Add(-5 * time.Hour)}
	users := newFakeUsers(idle)
	tasks := &fakeTasks{pending: map[uuid.UUID]int64{}}

	s, repo, rec := newInactivityFixture(users, tasks, nil)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Run(context.Background()))

	// No notification and no cool-down stamp: the user stays a candidate
	// and gets reminded as soon as they have pending work.
	assert.Empty(t, repo.all())
	assert.Nil(t, idle.InactivityNotifiedAt)
	assert.Empty(t, rec.entries)
}

func TestInactivityScannerStampsCoolDownDespiteEmailFailure(t *testing.T) {
	base := time.Now()
	idle := &user.User{ID: uuid.New(), Name: "Dana", Email: "dana@example.com", LastSeen: base.Add(-3 * time.Hour)}
	users := newFakeUsers(idle)
	tasks := &fakeTasks{pending: map[uuid.UUID]int64{idle.ID: 1}}

	sender := &fakeSender{err: errors.New("smtp: connection refused")}
	s, repo, _ := newInactivityFixture(users, tasks, sender)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Run(context.Background()))

	// The in-app record exists and the cool-down is stamped, so a broken
	// mailer cannot produce duplicate reminders tick after tick.
	assert.Len(t, repo.all(), 1)
	require.NotNil(t, idle.InactivityNotifiedAt)
	assert.True(t, idle.InactivityNotifiedAt.Equal(base))
}
