package pipeline

import "errors"

// Sentinel errors for the terminal pipeline stages.
var (
	ErrIdentity = errors.New("identity acquisition failed")
	ErrPersist  = errors.New("submission could not be stored")
)
