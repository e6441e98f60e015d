package waitlist

import (
	"context"
	"time"

	"github.com/kyozo/waitlist/internal/domain"
	"github.com/kyozo/waitlist/internal/pipeline"
)

// Submissions is the part of the store the dashboard needs.
type Submissions interface {
	List(ctx context.Context) ([]domain.Submission, error)
	Delete(ctx context.Context, id string) error
}

// Runner runs the submission pipeline.
type Runner interface {
	Run(ctx context.Context, userID string, sub *domain.Submission) (pipeline.Result, error)
}

// Notifier sends the emails the service triggers directly.
type Notifier interface {
	SendNewSubmission(ctx context.Context, sub *domain.Submission) error
	SendReply(ctx context.Context, to, message string) error
}

// Archiver keeps a copy of each CSV export.
type Archiver interface {
	ArchiveExport(ctx context.Context, at time.Time, csv []byte) (string, error)
}

// ListFilter narrows the dashboard listing.
type ListFilter struct {
	Query   string
	Segment string
}

// Listing is one dashboard page.
type Listing struct {
	Submissions []domain.Submission `json:"submissions"`
	Total       int                 `json:"total"`
	Shown       int                 `json:"shown"`
	Segments    map[string]int      `json:"segments"`
}
