// Package auth implements the admin session gate: operator credentials are
// checked by the identity provider and a successful check opens a cookie
// session that unlocks the admin routes.
//
// Lockout and rate limiting are left to the provider.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kyozo/waitlist/internal/config"
	"github.com/kyozo/waitlist/internal/identity"
	"github.com/kyozo/waitlist/internal/pkg/httputil"
	"github.com/kyozo/waitlist/internal/pkg/logger"
)

// User-facing login failure messages.
const (
	MsgInvalidCredentials = "Invalid email or password. Please try again."
	MsgUserNotFound       = "No account found with this email."
	MsgTooManyRequests    = "Too many failed attempts. Please try again later."
	MsgLoginFailed        = "Login failed. Please try again."
	MsgMissingCredentials = "Please enter your email and password."
)

// MessageFor maps a provider code to the text shown on the login form.
func MessageFor(code identity.Code) string {
	switch code {
	case identity.CodeInvalidCredential, identity.CodeWrongPassword:
		return MsgInvalidCredentials
	case identity.CodeUserNotFound:
		return MsgUserNotFound
	case identity.CodeTooManyRequests:
		return MsgTooManyRequests
	}
	return MsgLoginFailed
}

// LoginError is a failed credential check.
type LoginError struct {
	Code    identity.Code
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return e.Err }

// Session represents an authenticated operator session
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	IDToken   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Gate checks operator credentials and tracks admin sessions.
type Gate struct {
	provider  identity.Provider
	config    config.AdminConfig
	sessions  map[string]*Session
	sessionMu sync.RWMutex
	now       func() time.Time
}

// NewGate creates a gate backed by provider.
func NewGate(provider identity.Provider, cfg config.AdminConfig) *Gate {
	return &Gate{
		provider: provider,
		config:   cfg,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// generateSessionID creates a random session ID
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Login verifies the credentials and opens a session. Failures are
// *LoginError carrying the user-facing message.
func (g *Gate) Login(ctx context.Context, email, password string) (string, *Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, &LoginError{Code: identity.CodeInvalidCredential, Message: MsgMissingCredentials}
	}

	principal, err := g.provider.VerifyPassword(ctx, email, password)
	if err != nil {
		code := identity.CodeOf(err)
		logger.Warn("admin login failed", "email", email, "code", string(code))
		return "", nil, &LoginError{Code: code, Message: MessageFor(code), Err: err}
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return "", nil, &LoginError{Code: identity.CodeUnknown, Message: MsgLoginFailed, Err: err}
	}

	now := g.now()
	session := &Session{
		UserID:    principal.UID,
		Email:     principal.Email,
		IDToken:   principal.IDToken,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(g.config.CookieMaxAge) * time.Second),
	}
	if session.Email == "" {
		session.Email = email
	}

	g.sessionMu.Lock()
	g.sessions[sessionID] = session
	g.sessionMu.Unlock()

	log.Printf("Auth: operator logged in: %s", logger.RedactEmail(session.Email))
	return sessionID, session, nil
}

// Logout deletes a session.
func (g *Gate) Logout(sessionID string) {
	g.sessionMu.Lock()
	delete(g.sessions, sessionID)
	g.sessionMu.Unlock()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials posted as JSON. On failure the email is
// echoed back so the form can keep it while clearing the password.
func (g *Gate) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	sessionID, session, err := g.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		msg := MsgLoginFailed
		var le *LoginError
		if errors.As(err, &le) {
			msg = le.Message
		}
		httputil.JSON(w, http.StatusUnauthorized, map[string]interface{}{
			"authenticated": false,
			"error":         msg,
			"email":         strings.TrimSpace(req.Email),
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     g.config.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   g.config.CookieMaxAge,
		HttpOnly: true,
		Secure:   g.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.OK(w, map[string]interface{}{
		"authenticated": true,
		"user":          map[string]string{"id": session.UserID, "email": session.Email},
	})
}

// HandleLogout ends the caller's session
func (g *Gate) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(g.config.CookieName); err == nil {
		g.Logout(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:   g.config.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	httputil.OK(w, map[string]bool{"authenticated": false})
}

// HandleSession reports whether the caller is authenticated.
func (g *Gate) HandleSession(w http.ResponseWriter, r *http.Request) {
	session := g.GetSession(r)
	if session == nil {
		httputil.JSON(w, http.StatusUnauthorized, map[string]interface{}{
			"authenticated": false,
		})
		return
	}
	httputil.OK(w, map[string]interface{}{
		"authenticated": true,
		"user":          map[string]string{"id": session.UserID, "email": session.Email},
		"expires_at":    session.ExpiresAt,
	})
}

// GetSession returns the session for the current request, or nil if not authenticated
func (g *Gate) GetSession(r *http.Request) *Session {
	cookie, err := r.Cookie(g.config.CookieName)
	if err != nil {
		return nil
	}

	g.sessionMu.RLock()
	session, exists := g.sessions[cookie.Value]
	g.sessionMu.RUnlock()

	if !exists {
		return nil
	}

	// Check if session has expired
	if g.now().After(session.ExpiresAt) {
		g.Logout(cookie.Value)
		return nil
	}

	return session
}

// IsAuthenticated checks if the request is from an authenticated operator
func (g *Gate) IsAuthenticated(r *http.Request) bool {
	return g.GetSession(r) != nil
}

type sessionKey struct{}

// SessionFrom returns the admin session stored by RequireAdmin.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// RequireAdmin is middleware that rejects unauthenticated requests with 401.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := g.GetSession(r)
		if session == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "unauthorized",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
	})
}

// CleanupExpiredSessions removes expired sessions every interval until ctx
// is done.
func (g *Gate) CleanupExpiredSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.sweep()
			}
		}
	}()
}

func (g *Gate) sweep() int {
	now := g.now()
	g.sessionMu.Lock()
	defer g.sessionMu.Unlock()
	n := 0
	for id, session := range g.sessions {
		if now.After(session.ExpiresAt) {
			delete(g.sessions, id)
			n++
		}
	}
	return n
}
