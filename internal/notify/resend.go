package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kyozo/waitlist/internal/config"
	"github.com/kyozo/waitlist/internal/pkg/httpretry"
)

// ResendMailer sends through the Resend REST API.
type ResendMailer struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewResendMailer creates a Resend client from config. POST /emails is not
// idempotent, so each Send is exactly one request.
func NewResendMailer(cfg config.EmailConfig) *ResendMailer {
	return &ResendMailer{
		baseURL: strings.TrimRight(cfg.ResendBaseURL, "/"),
		apiKey:  cfg.ResendAPIKey,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 0),
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// resendError is the provider's error body.
type resendError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (e *resendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("resend returned status %d", e.StatusCode)
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	payload, err := json.Marshal(resendRequest{From: msg.From, To: msg.To, Subject: msg.Subject, HTML: msg.HTML})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := &resendError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(body, re)
		if re.StatusCode == 0 {
			re.StatusCode = resp.StatusCode
		}
		return "", re
	}

	var out resendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	return out.ID, nil
}

// ProviderMessage returns the provider's own error text when err came from
// Resend, for surfacing to the caller as the original endpoint did.
func ProviderMessage(err error) (string, bool) {
	var re *resendError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message, true
	}
	return "", false
}
