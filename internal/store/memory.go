package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kyozo/waitlist/internal/domain"
)

// MemoryRepository keeps submissions in process.
type MemoryRepository struct {
	mu   sync.RWMutex
	subs map[string]*domain.Submission
	now  func() time.Time
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		subs: make(map[string]*domain.Submission),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRepository) Create(_ context.Context, sub *domain.Submission) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	sub.ID = id.String()
	sub.Timestamp = m.now()

	m.mu.Lock()
	m.subs[sub.ID] = sub.Clone()
	m.mu.Unlock()
	return sub.ID, nil
}

func (m *MemoryRepository) List(context.Context) ([]domain.Submission, error) {
	m.mu.RLock()
	out := make([]domain.Submission, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, *s.Clone())
	}
	m.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return ErrNotFound
	}
	delete(m.subs, id)
	return nil
}

func (m *MemoryRepository) Ping(context.Context) error { return nil }

// Len returns the number of stored submissions.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}
