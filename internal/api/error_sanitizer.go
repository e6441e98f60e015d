package api

import (
	"net/http"
	"strings"

	"github.com/kyozo/waitlist/internal/pkg/httputil"
)

// respondSafeError logs the full internal error and sends only publicMsg.
// Every 5xx goes through here so store or provider details never reach
// the browser.
func respondSafeError(w http.ResponseWriter, code int, internalErr error, publicMsg string) {
	httputil.SafeError(w, code, internalErr, publicMsg)
}

// respondInternal picks a public message for an unexpected error.
func respondInternal(w http.ResponseWriter, internalErr error) {
	respondSafeError(w, http.StatusInternalServerError, internalErr, safeErrorMessage(http.StatusInternalServerError, internalErr))
}

// safeErrorMessage maps common internal error patterns to public-safe messages.
// For 400-level errors, the original message is typically fine (user input issues).
// For 500-level errors, this returns a generic safe message.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}

	if internalErr == nil {
		return "Internal server error"
	}

	errStr := strings.ToLower(internalErr.Error())

	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"

	case strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "dynamodb") ||
		strings.Contains(errStr, "firestore") ||
		strings.Contains(errStr, "redis"):
		return "A storage error occurred"

	case strings.Contains(errStr, "permission") ||
		strings.Contains(errStr, "access denied"):
		return "Access denied"

	default:
		return "Internal server error"
	}
}
