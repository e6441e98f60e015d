package form

import "context"

// Store holds sessions between requests. Implementations must be safe for
// concurrent use.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, s *Session) error
	// Get returns a copy of the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Save overwrites an existing session and refreshes its TTL.
	Save(ctx context.Context, s *Session) error
	// Delete removes a session. Missing sessions are not an error.
	Delete(ctx context.Context, id string) error
	// Lock serialises load-modify-save on one session. The returned func
	// releases it. Returns ErrLockTimeout if ctx ends first.
	Lock(ctx context.Context, id string) (unlock func(), err error)
}
