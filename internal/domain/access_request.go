package domain

import "time"

// AccessRequest is the short request-access form shown beside the passcode gate.
type AccessRequest struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CreativeWork string    `json:"creativeWork"`
	ReceivedAt   time.Time `json:"receivedAt,omitempty"`
}
