package pipeline

import (
	"sync"
	"time"
)

// AttemptStatus is the outcome of one notification send.
type AttemptStatus string

const (
	AttemptSent   AttemptStatus = "sent"
	AttemptFailed AttemptStatus = "failed"
)

// Attempt records one notification send.
type Attempt struct {
	SubmissionID string        `json:"submissionId"`
	Status       AttemptStatus `json:"status"`
	Error        string        `json:"error,omitempty"`
	At           time.Time     `json:"at"`
}

// NotificationLog keeps the most recent attempts in memory.
type NotificationLog struct {
	mu       sync.Mutex
	attempts []Attempt
	limit    int
}

// NewNotificationLog keeps at most limit attempts.
func NewNotificationLog(limit int) *NotificationLog {
	if limit <= 0 {
		limit = 200
	}
	return &NotificationLog{limit: limit}
}

// Record appends an attempt for submissionID; err nil means sent.
func (l *NotificationLog) Record(submissionID string, err error) {
	a := Attempt{SubmissionID: submissionID, Status: AttemptSent, At: time.Now().UTC()}
	if err != nil {
		a.Status = AttemptFailed
		a.Error = err.Error()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append(l.attempts, a)
	if over := len(l.attempts) - l.limit; over > 0 {
		l.attempts = append([]Attempt(nil), l.attempts[over:]...)
	}
}

// Attempts returns a copy, oldest first.
func (l *NotificationLog) Attempts() []Attempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Attempt(nil), l.attempts...)
}

// For returns the attempts for one submission.
func (l *NotificationLog) For(submissionID string) []Attempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Attempt
	for _, a := range l.attempts {
		if a.SubmissionID == submissionID {
			out = append(out, a)
		}
	}
	return out
}

// Failures counts failed attempts currently held.
func (l *NotificationLog) Failures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, a := range l.attempts {
		if a.Status == AttemptFailed {
			n++
		}
	}
	return n
}
