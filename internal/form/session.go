package form

import (
	"time"

	"github.com/kyozo/waitlist/internal/domain"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusEditing   Status = "editing"
	StatusSubmitted Status = "submitted"
)

// Direction records which way the last navigation went. Presentational only.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Session is one visitor's pass through the form.
type Session struct {
	ID        string             `json:"id"`
	Step      Step               `json:"step"`
	Direction Direction          `json:"direction"`
	Draft     *domain.Submission `json:"submission,omitempty"`
	Errors    Errors             `json:"errors,omitempty"`
	InFlight  bool               `json:"inFlight"`
	Status    Status             `json:"status"`

	// UserID is the identity token acquired by a previous attempt. It is kept
	// across a failed write so a retry does not sign in again.
	UserID       string `json:"userId,omitempty"`
	SubmissionID string `json:"submissionId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession returns a session on the first step with an empty draft.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Step:      StepIdentity,
		Direction: Forward,
		Draft:     &domain.Submission{},
		Status:    StatusEditing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AdvanceResult describes what a successful Advance did.
type AdvanceResult struct {
	// Moved is true when the step index incremented.
	Moved bool
	// Submit is true when the last step passed and the pipeline must run on
	// Submission. The session is now in flight.
	Submit     bool
	Submission *domain.Submission
}

func (s *Session) touch() { s.UpdatedAt = time.Now().UTC() }

// Apply writes the patch into the draft and clears the error of every field
// it touches. Changing the resonance level keeps the chosen reasons.
func (s *Session) Apply(p Patch) error {
	if s.Status == StatusSubmitted {
		return ErrSubmitted
	}
	if s.InFlight {
		return ErrSubmitInFlight
	}
	if s.Draft == nil {
		s.Draft = &domain.Submission{}
	}
	for _, field := range p.apply(s.Draft) {
		delete(s.Errors, field)
	}
	if len(s.Errors) == 0 {
		s.Errors = nil
	}
	s.touch()
	return nil
}

// Advance validates the current step. On failure the step stays put and
// Errors holds exactly the violated fields. On the last step a valid advance
// marks the session in flight and hands back a frozen copy of the draft.
func (s *Session) Advance() (AdvanceResult, error) {
	if s.Status == StatusSubmitted {
		return AdvanceResult{}, ErrSubmitted
	}
	if s.InFlight {
		return AdvanceResult{}, ErrSubmitInFlight
	}
	if errs := Validate(s.Step, s.Draft); len(errs) > 0 {
		s.Errors = errs
		s.touch()
		return AdvanceResult{}, ErrValidation
	}
	s.Errors = nil
	s.Direction = Forward
	s.touch()

	if int(s.Step) < TotalSteps {
		s.Step++
		return AdvanceResult{Moved: true}, nil
	}

	s.InFlight = true
	frozen := s.Draft.Clone()
	if s.UserID != "" {
		frozen.UserID = s.UserID
	}
	return AdvanceResult{Submit: true, Submission: frozen}, nil
}

// Retreat moves back one step without validating. It is a no-op on the
// first step. The submit control is disabled while in flight, so is this.
func (s *Session) Retreat() (moved bool, err error) {
	if s.Status == StatusSubmitted {
		return false, ErrSubmitted
	}
	if s.InFlight {
		return false, ErrSubmitInFlight
	}
	s.Direction = Backward
	s.touch()
	if s.Step <= StepIdentity {
		return false, nil
	}
	s.Step--
	s.Errors = nil
	return true, nil
}

// Complete makes the session terminal after the pipeline stored the
// submission under id. The draft is discarded.
func (s *Session) Complete(submissionID string) {
	s.Status = StatusSubmitted
	s.InFlight = false
	s.SubmissionID = submissionID
	s.Draft = nil
	s.Errors = nil
	s.touch()
}

// Fail clears the in-flight flag so the visitor can retry from the last step.
func (s *Session) Fail() {
	s.InFlight = false
	s.touch()
}

// RememberIdentity keeps an identity token acquired by a failed attempt.
func (s *Session) RememberIdentity(uid string) {
	if uid != "" && s.UserID == "" {
		s.UserID = uid
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Draft = s.Draft.Clone()
	if s.Errors != nil {
		c.Errors = make(Errors, len(s.Errors))
		for k, v := range s.Errors {
			c.Errors[k] = v
		}
	}
	return &c
}
