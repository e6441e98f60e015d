package waitlist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kyozo/waitlist/internal/domain"
	"github.com/kyozo/waitlist/internal/form"
	"github.com/kyozo/waitlist/internal/pipeline"
	"github.com/kyozo/waitlist/internal/pkg/logger"
)

// finishTimeout bounds the relock that records a pipeline outcome. It runs
// on a context detached from the request.
const finishTimeout = 30 * time.Second

// Service implements the waitlist use cases. All public methods are safe
// for concurrent use if the underlying stores are.
type Service struct {
	sessions    form.Store
	runner      Runner
	submissions Submissions
	notifier    Notifier
	archiver    Archiver
	now         func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithArchiver archives every CSV export.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the service.
func NewService(sessions form.Store, runner Runner, submissions Submissions, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		sessions:    sessions,
		runner:      runner,
		submissions: submissions,
		notifier:    notifier,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession creates a fresh form session on the first step.
func (s *Service) StartSession(ctx context.Context) (*form.Session, error) {
	sess := form.NewSession(uuid.NewString(), s.now().UTC())
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// GetSession returns a session view.
func (s *Service) GetSession(ctx context.Context, id string) (*form.Session, error) {
	return s.sessions.Get(ctx, id)
}

// mutate runs fn on the stored session under its lock and saves the result
// whenever fn changed it, including when fn reports an error.
func (s *Service) mutate(ctx context.Context, id string, fn func(*form.Session) (bool, error)) (*form.Session, error) {
	unlock, err := s.sessions.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, fnErr := fn(sess)
	if changed {
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return sess, fnErr
}

// UpdateSession applies a field patch.
func (s *Service) UpdateSession(ctx context.Context, id string, p form.Patch) (*form.Session, error) {
	return s.mutate(ctx, id, func(sess *form.Session) (bool, error) {
		if err := sess.Apply(p); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Retreat moves the session back one step.
func (s *Service) Retreat(ctx context.Context, id string) (*form.Session, error) {
	return s.mutate(ctx, id, func(sess *form.Session) (bool, error) {
		if _, err := sess.Retreat(); err != nil {
			return false, err
		}
		return true, nil
	})
}

// AdvanceOutcome describes an advance request.
type AdvanceOutcome struct {
	Session   *form.Session
	Moved     bool
	Submitted bool
	// Alert is the user-facing message after a failed final submit.
	Alert string
}

// Advance validates the current step and moves forward. On the last step it
// runs the pipeline outside the session lock, then records the outcome: the
// session becomes terminal on success, or returns to editing with the
// acquired identity remembered on failure.
//
// The returned outcome is non-nil for form.ErrValidation and ErrSubmitFailed
// so callers can render errors against the session.
func (s *Service) Advance(ctx context.Context, id string) (*AdvanceOutcome, error) {
	var res form.AdvanceResult
	sess, err := s.mutate(ctx, id, func(sess *form.Session) (bool, error) {
		var err error
		res, err = sess.Advance()
		if errors.Is(err, form.ErrValidation) {
			return true, err
		}
		return err == nil, err
	})
	if errors.Is(err, form.ErrValidation) {
		return &AdvanceOutcome{Session: sess}, err
	}
	if err != nil {
		return nil, err
	}
	if !res.Submit {
		return &AdvanceOutcome{Session: sess, Moved: res.Moved}, nil
	}

	// The visitor may disconnect; the outcome must still be recorded or the
	// session would stay in flight until it expires.
	detached := context.WithoutCancel(ctx)
	result, runErr := s.runner.Run(detached, sess.UserID, res.Submission)

	finishCtx, cancel := context.WithTimeout(detached, finishTimeout)
	defer cancel()
	sess, err = s.mutate(finishCtx, id, func(sess *form.Session) (bool, error) {
		if runErr != nil {
			sess.Fail()
			sess.RememberIdentity(result.UserID)
			return true, nil
		}
		sess.Complete(result.SubmissionID)
		return true, nil
	})
	if err != nil {
		log.Printf("[waitlist] session %s: recording pipeline outcome failed: %v", id, err)
		if runErr == nil {
			return &AdvanceOutcome{Submitted: true}, nil
		}
		return nil, err
	}

	if runErr != nil {
		alert := MsgSubmitFailed
		if errors.Is(runErr, pipeline.ErrIdentity) {
			alert = MsgAuthFailed
		}
		return &AdvanceOutcome{Session: sess, Alert: alert}, fmt.Errorf("%w: %w", ErrSubmitFailed, runErr)
	}
	return &AdvanceOutcome{Session: sess, Submitted: true}, nil
}

// ListSubmissions returns submissions newest first, filtered by a
// case-insensitive search over name, email and location and by segment.
// Counts always cover the unfiltered set.
func (s *Service) ListSubmissions(ctx context.Context, f ListFilter) (*Listing, error) {
	all, err := s.submissions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	seg := strings.ToLower(strings.TrimSpace(f.Segment))
	if seg == "all" {
		seg = ""
	}

	out := &Listing{
		Submissions: make([]domain.Submission, 0, len(all)),
		Total:       len(all),
		Segments:    make(map[string]int, len(domain.AllSegments)),
	}
	for _, sg := range domain.AllSegments {
		out.Segments[string(sg)] = 0
	}
	for i := range all {
		sub := &all[i]
		for _, sg := range sub.Segments() {
			out.Segments[string(sg)]++
		}
		if seg != "" && !sub.InSegment(domain.Segment(seg)) {
			continue
		}
		if q != "" && !matches(sub, q) {
			continue
		}
		out.Submissions = append(out.Submissions, *sub)
	}
	out.Shown = len(out.Submissions)
	return out, nil
}

func matches(sub *domain.Submission, q string) bool {
	for _, field := range []string{sub.FirstName, sub.LastName, sub.Email, sub.Location} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Reply emails an operator message to a submitter. Blank fields are
// ErrInvalidInput; provider failures are ErrReplyFailed.
func (s *Service) Reply(ctx context.Context, to, message string) error {
	if strings.TrimSpace(to) == "" || strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: recipient and message are required", ErrInvalidInput)
	}
	if err := s.notifier.SendReply(ctx, to, message); err != nil {
		return fmt.Errorf("%w: %w", ErrReplyFailed, err)
	}
	return nil
}

// DeleteSubmission removes a stored submission.
func (s *Service) DeleteSubmission(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: missing submission id", ErrInvalidInput)
	}
	if err := s.submissions.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[waitlist] submission %s deleted", id)
	return nil
}

// NotifySubmission sends the new-submission email for form data posted
// directly, without storing it.
func (s *Service) NotifySubmission(ctx context.Context, sub *domain.Submission) error {
	return s.notifier.SendNewSubmission(ctx, sub)
}

// RequestAccess records a request-access form. It is logged only.
func (s *Service) RequestAccess(_ context.Context, req domain.AccessRequest) domain.AccessRequest {
	req.ReceivedAt = s.now().UTC()
	logger.Info("access requested", "name", req.Name, "email", req.Email, "creative_work", req.CreativeWork)
	return req
}
