// Package distlock serialises work on one key across server instances.
//
// The waitlist uses it to make load-modify-save of a form session atomic
// when sessions live in Redis, so two replicas can never both observe a
// session as idle and start two submissions for it.
package distlock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned by AcquireWait when the context expires
// before the lock becomes free.
var ErrNotAcquired = errors.New("distlock: lock not acquired")

// DistLock is the interface for distributed locking.
// Implementations must be safe for use from a single goroutine;
// concurrent use across goroutines requires separate lock instances.
type DistLock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// AcquireWait polls Acquire every interval until it succeeds, fails, or ctx
// is done.
func AcquireWait(ctx context.Context, l DistLock, interval time.Duration) error {
	if interval <= 0 {
		interval = 25 * time.Millisecond
	}
	for {
		ok, err := l.Acquire(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ErrNotAcquired
		case <-timer.C:
		}
	}
}
