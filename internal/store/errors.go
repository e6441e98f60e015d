package store

import "errors"

// Sentinel errors for the store adapters.
var (
	ErrNotFound  = errors.New("submission not found")
	ErrMissingID = errors.New("missing submission ID")
)
