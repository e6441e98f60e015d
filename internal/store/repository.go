package store

import (
	"context"
	"sort"

	"github.com/kyozo/waitlist/internal/domain"
)

// Repository defines the data access contract for submissions.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Create stores sub, assigning ID and Timestamp on it, and returns the id.
	Create(ctx context.Context, sub *domain.Submission) (string, error)

	// List returns every submission, newest first.
	List(ctx context.Context) ([]domain.Submission, error)

	// Delete removes a submission. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// sortNewestFirst orders by timestamp descending, id descending on ties.
func sortNewestFirst(subs []domain.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].Timestamp.Equal(subs[j].Timestamp) {
			return subs[i].ID > subs[j].ID
		}
		return subs[i].Timestamp.After(subs[j].Timestamp)
	})
}
