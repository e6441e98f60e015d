package identity

import (
	"context"
	"errors"
	"fmt"
)

// Code is a provider-neutral failure code.
type Code string

const (
	CodeInvalidCredential Code = "invalid-credential"
	CodeWrongPassword     Code = "wrong-password"
	CodeUserNotFound      Code = "user-not-found"
	CodeTooManyRequests   Code = "too-many-requests"
	CodeUserDisabled      Code = "user-disabled"
	CodeUnavailable       Code = "unavailable"
	CodeUnknown           Code = "unknown"
)

// Error is a provider failure with its code.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("identity: %s", e.Code)
	}
	return fmt.Sprintf("identity: %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return CodeUnknown
}

// Principal is an authenticated operator.
type Principal struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	IDToken string `json:"-"`
}

// Provider issues anonymous identities and verifies operator credentials.
type Provider interface {
	SignInAnonymously(ctx context.Context) (uid string, err error)
	VerifyPassword(ctx context.Context, email, password string) (*Principal, error)
}
