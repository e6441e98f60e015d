package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/kyozo/waitlist/internal/config"
	"github.com/kyozo/waitlist/internal/domain"
	"github.com/kyozo/waitlist/internal/pkg/logger"
)

// Notifier composes the two waitlist emails and hands them to a Mailer.
type Notifier struct {
	mailer       Mailer
	templates    *Templates
	notifyFrom   string
	notifyTo     string
	replyFrom    string
	replySubject string
}

// NewNotifier wires mailer with the sender identities from cfg.
func NewNotifier(mailer Mailer, templates *Templates, cfg config.EmailConfig) *Notifier {
	return &Notifier{
		mailer:       mailer,
		templates:    templates,
		notifyFrom:   cfg.NotifyFrom,
		notifyTo:     cfg.NotifyTo,
		replyFrom:    cfg.ReplyFrom,
		replySubject: cfg.ReplySubject,
	}
}

// SendNewSubmission notifies the operations inbox about sub.
func (n *Notifier) SendNewSubmission(ctx context.Context, sub *domain.Submission) error {
	subject, body, err := n.templates.NewSubmission(sub)
	if err != nil {
		return err
	}
	id, err := n.mailer.Send(ctx, Message{
		From:    n.notifyFrom,
		To:      []string{n.notifyTo},
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("send new-submission email: %w", err)
	}
	logger.Info("new-submission email accepted", "message_id", id, "submitter_email", sub.Email)
	return nil
}

// SendReply sends an operator-authored HTML message to a submitter. It is a
// single attempt.
func (n *Notifier) SendReply(ctx context.Context, to, message string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}
	if strings.TrimSpace(message) == "" {
		return ErrNoMessage
	}
	id, err := n.mailer.Send(ctx, Message{
		From:    n.replyFrom,
		To:      []string{to},
		Subject: n.replySubject,
		HTML:    message,
	})
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	logger.Info("reply email accepted", "message_id", id, "to", to)
	return nil
}
