package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyozo/waitlist/internal/domain"
)

type fakeIdentity struct {
	mu    sync.Mutex
	calls int
	uid   string
	err   error
}

func (f *fakeIdentity) SignInAnonymously(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.uid, f.err
}

type mockRepo struct {
	mu     sync.Mutex
	writes []*domain.Submission
	id     string
	err    error
}

func (m *mockRepo) Create(_ context.Context, sub *domain.Submission) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	cp := sub.Clone()
	cp.ID = m.id
	cp.Timestamp = time.Now().UTC()
	m.writes = append(m.writes, cp)
	return m.id, nil
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mockNotifier) SendNewSubmission(_ context.Context, sub *domain.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sub.ID)
	return m.err
}

func sarah() *domain.Submission {
	return &domain.Submission{
		FirstName:        "Sarah",
		LastName:         "Chen",
		Email:            "sarah.chen@example.com",
		Phone:            "+1 415 555 0134",
		Location:         "San Francisco, US",
		CreativeWork:     "Mixed-media installations",
		BetaTesting:      domain.BetaYes,
		ResonanceLevel:   "5",
		ResonanceReasons: []string{"control", "freedom"},
	}
}

func TestRun_StoresOnceAndNotifies(t *testing.T) {
	ident := &fakeIdentity{uid: "anon-1"}
	repo := &mockRepo{id: "doc-1"}
	notifier := &mockNotifier{}
	p := New(ident, repo, notifier)

	res, err := p.Run(context.Background(), "", sarah())
	require.NoError(t, err)
	p.Wait()

	assert.Equal(t, Result{SubmissionID: "doc-1", UserID: "anon-1"}, res)
	require.Len(t, repo.writes, 1)
	w := repo.writes[0]
	assert.Equal(t, "anon-1", w.UserID)
	assert.Equal(t, "Sarah", w.FirstName)
	assert.Equal(t, "Chen", w.LastName)
	assert.Equal(t, "sarah.chen@example.com", w.Email)
	assert.Equal(t, "5", w.ResonanceLevel)
	assert.Equal(t, []string{"control", "freedom"}, w.ResonanceReasons)
	assert.False(t, w.Timestamp.IsZero())

	assert.Equal(t, []string{"doc-1"}, notifier.sent)
	attempts := p.Log().For("doc-1")
	require.Len(t, attempts, 1)
	assert.Equal(t, AttemptSent, attempts[0].Status)
}

func TestRun_ReusesExistingIdentity(t *testing.T) {
	ident := &fakeIdentity{uid: "never"}
	p := New(ident, &mockRepo{id: "doc-2"}, nil)

	res, err := p.Run(context.Background(), "anon-9", sarah())
	require.NoError(t, err)
	assert.Equal(t, "anon-9", res.UserID)
	assert.Zero(t, ident.calls)
}

func TestRun_NotificationFailureIsNotFatal(t *testing.T) {
	repo := &mockRepo{id: "abc123"}
	notifier := &mockNotifier{err: errors.New("insufficient credits")}
	p := New(&fakeIdentity{uid: "anon-1"}, repo, notifier)

	res, err := p.Run(context.Background(), "", sarah())
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.SubmissionID)
	p.Wait()

	require.Len(t, repo.writes, 1)
	attempts := p.Log().For("abc123")
	require.Len(t, attempts, 1)
	assert.Equal(t, AttemptFailed, attempts[0].Status)
	assert.Equal(t, "insufficient credits", attempts[0].Error)
	assert.Equal(t, 1, p.Log().Failures())
}

func TestRun_IdentityFailureStopsBeforeWrite(t *testing.T) {
	repo := &mockRepo{id: "doc"}
	notifier := &mockNotifier{}
	p := New(&fakeIdentity{err: errors.New("provider down")}, repo, notifier)

	_, err := p.Run(context.Background(), "", sarah())
	assert.ErrorIs(t, err, ErrIdentity)
	assert.ErrorContains(t, err, "provider down")
	p.Wait()
	assert.Empty(t, repo.writes)
	assert.Empty(t, notifier.sent)
}

func TestRun_PersistFailureKeepsIdentity(t *testing.T) {
	repo := &mockRepo{err: errors.New("quota exceeded")}
	notifier := &mockNotifier{}
	p := New(&fakeIdentity{uid: "anon-3"}, repo, notifier)

	res, err := p.Run(context.Background(), "", sarah())
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, "anon-3", res.UserID)
	assert.Empty(t, res.SubmissionID)
	p.Wait()
	assert.Empty(t, notifier.sent)
}

type blockingNotifier struct {
	release chan struct{}
	ctxErr  error
}

func (b *blockingNotifier) SendNewSubmission(ctx context.Context, _ *domain.Submission) error {
	<-b.release
	b.ctxErr = ctx.Err()
	return nil
}

func TestRun_NotificationOutlivesRequestContext(t *testing.T) {
	notifier := &blockingNotifier{release: make(chan struct{})}
	p := New(&fakeIdentity{uid: "u"}, &mockRepo{id: "doc"}, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := p.Run(ctx, "", sarah())
	require.NoError(t, err, "Run must not wait for the notification")
	cancel()
	close(notifier.release)
	p.Wait()

	assert.NoError(t, notifier.ctxErr)
	require.Len(t, p.Log().For("doc"), 1)
}

func TestNotificationLog_Bounded(t *testing.T) {
	l := NewNotificationLog(2)
	l.Record("a", nil)
	l.Record("b", errors.New("x"))
	l.Record("c", nil)

	got := l.Attempts()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].SubmissionID)
	assert.Equal(t, "c", got[1].SubmissionID)
}
