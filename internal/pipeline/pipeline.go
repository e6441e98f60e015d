package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kyozo/waitlist/internal/domain"
	"github.com/kyozo/waitlist/internal/pkg/logger"
)

// IdentityProvider issues anonymous identity tokens.
type IdentityProvider interface {
	SignInAnonymously(ctx context.Context) (uid string, err error)
}

// Repository persists a submission and returns its id. It assigns the id and
// timestamp.
type Repository interface {
	Create(ctx context.Context, sub *domain.Submission) (string, error)
}

// Notifier sends the new-submission email.
type Notifier interface {
	SendNewSubmission(ctx context.Context, sub *domain.Submission) error
}

// Result is what a successful run produced. UserID is also set when a run
// fails at persistence, so the caller can reuse the token on retry.
type Result struct {
	SubmissionID string
	UserID       string
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	identity IdentityProvider
	repo     Repository
	notifier Notifier
	log      *NotificationLog

	notifyTimeout time.Duration
	wg            sync.WaitGroup
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithNotifyTimeout bounds each detached notification send.
func WithNotifyTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.notifyTimeout = d }
}

// WithNotificationLog shares a log between pipelines and handlers.
func WithNotificationLog(l *NotificationLog) Option {
	return func(p *Pipeline) { p.log = l }
}

// New builds a pipeline. notifier may be nil, in which case no email is sent.
func New(identity IdentityProvider, repo Repository, notifier Notifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		identity:      identity,
		repo:          repo,
		notifier:      notifier,
		notifyTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = NewNotificationLog(200)
	}
	return p
}

// Log returns the notification log.
func (p *Pipeline) Log() *NotificationLog { return p.log }

// Run stores sub. userID is the caller's existing identity token; when empty
// one is acquired first. On success the notification is dispatched in the
// background and Run returns without waiting for it.
func (p *Pipeline) Run(ctx context.Context, userID string, sub *domain.Submission) (Result, error) {
	sub = sub.Clone()
	if userID == "" {
		userID = sub.UserID
	}
	if userID == "" {
		uid, err := p.identity.SignInAnonymously(ctx)
		if err != nil {
			log.Printf("[pipeline] identity acquisition failed: %v", err)
			return Result{}, fmt.Errorf("%w: %w", ErrIdentity, err)
		}
		userID = uid
	}
	if err := sub.SetIdentity(userID); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrIdentity, err)
	}

	id, err := p.repo.Create(ctx, sub)
	if err != nil {
		log.Printf("[pipeline] store write failed for uid %s: %v", userID, err)
		return Result{UserID: userID}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	sub.ID = id

	logger.Info("submission stored", "submission_id", id, "email", sub.Email)

	if p.notifier != nil {
		p.dispatch(sub)
	}
	return Result{SubmissionID: id, UserID: userID}, nil
}

// dispatch sends the notification on its own goroutine with a context that
// is not derived from the request.
func (p *Pipeline) dispatch(sub *domain.Submission) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.notifyTimeout)
		defer cancel()

		err := p.notifier.SendNewSubmission(ctx, sub)
		p.log.Record(sub.ID, err)
		if err != nil {
			logger.Warn("new-submission notification failed", "submission_id", sub.ID, "error", err)
			return
		}
		logger.Info("new-submission notification sent", "submission_id", sub.ID)
	}()
}

// Wait blocks until every dispatched notification has finished.
func (p *Pipeline) Wait() { p.wg.Wait() }
