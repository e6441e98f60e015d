package form

import "errors"

// Sentinel errors for the form state machine and session stores.
var (
	ErrValidation      = errors.New("step has validation errors")
	ErrSubmitInFlight  = errors.New("submission already in flight")
	ErrSubmitted       = errors.New("form already submitted")
	ErrSessionNotFound = errors.New("form session not found")
	ErrLockTimeout     = errors.New("form session busy")
)
