package waitlist

import "errors"

// Sentinel errors for the waitlist service layer.
var (
	ErrSubmitFailed = errors.New("submission failed")
	ErrReplyFailed  = errors.New("reply failed")
	ErrInvalidInput = errors.New("invalid input")
)

// User-facing alerts for a failed final submit or reply.
const (
	MsgAuthFailed   = "Authentication failed. Please try again."
	MsgSubmitFailed = "Failed to submit form. Please try again."
	MsgReplyFailed  = "Failed to send reply. Please try again."
)
