package notify

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/kyozo/waitlist/internal/pkg/logger"
)

// Sentinel errors for the notification adapter.
var (
	ErrNoRecipient = errors.New("recipient is required")
	ErrNoMessage   = errors.New("message is required")
)

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers a message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// LogMailer only logs. Used when no provider is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) (string, error) {
	id := uuid.NewString()
	redacted := make([]string, len(msg.To))
	for i, to := range msg.To {
		redacted[i] = logger.RedactEmail(to)
	}
	log.Printf("[notify] log mailer: %q to %s (id: %s)", msg.Subject, strings.Join(redacted, ", "), id)
	return id, nil
}
