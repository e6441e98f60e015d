package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kyozo/waitlist/internal/config"
	"github.com/kyozo/waitlist/internal/pkg/httpretry"
)

// FirebaseClient talks to the Identity Toolkit REST API.
type FirebaseClient struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.HTTPDoer
}

// NewFirebaseClient creates a client from config.
func NewFirebaseClient(cfg config.IdentityConfig) *FirebaseClient {
	return &FirebaseClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// signInRetries applies to password sign-in only. accounts:signUp creates an
// account per request and is never retried.
const signInRetries = 2

type signUpResponse struct {
	LocalID string `json:"localId"`
	IDToken string `json:"idToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInAnonymously creates an anonymous account and returns its uid.
func (c *FirebaseClient) SignInAnonymously(ctx context.Context) (string, error) {
	var out signUpResponse
	if err := c.post(ctx, 0, "accounts:signUp", map[string]any{"returnSecureToken": true}, &out); err != nil {
		return "", err
	}
	if out.LocalID == "" {
		return "", &Error{Code: CodeUnknown, Err: fmt.Errorf("signUp returned no localId")}
	}
	return out.LocalID, nil
}

// VerifyPassword checks an operator's email and password.
func (c *FirebaseClient) VerifyPassword(ctx context.Context, email, password string) (*Principal, error) {
	var out signInResponse
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	if err := c.post(ctx, signInRetries, "accounts:signInWithPassword", body, &out); err != nil {
		return nil, err
	}
	return &Principal{UID: out.LocalID, Email: out.Email, IDToken: out.IDToken}, nil
}

func (c *FirebaseClient) post(ctx context.Context, retries int, method string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	u := c.baseURL + "/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpretry.NewRetryClient(c.httpClient, retries).Do(req)
	if err != nil {
		return &Error{Code: CodeUnavailable, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Code: CodeUnavailable, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var pe providerError
		_ = json.Unmarshal(body, &pe)
		msg := pe.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return &Error{Code: codeFromMessage(msg), Err: fmt.Errorf("%s", msg)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// codeFromMessage maps provider error messages such as
// "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account..." to a Code.
func codeFromMessage(msg string) Code {
	head := strings.TrimSpace(strings.SplitN(msg, ":", 2)[0])
	switch head {
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return CodeInvalidCredential
	case "INVALID_PASSWORD":
		return CodeWrongPassword
	case "EMAIL_NOT_FOUND":
		return CodeUserNotFound
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return CodeTooManyRequests
	case "USER_DISABLED":
		return CodeUserDisabled
	}
	return CodeUnknown
}
