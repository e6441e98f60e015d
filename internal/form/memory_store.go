package form

import (
	"context"
	"log"
	"sync"
	"time"
)

type memoryEntry struct {
	session *Session
	expires time.Time
}

// MemoryStore keeps sessions in process. Suitable for a single instance.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration

	lockMu sync.Mutex
	locks  map[string]chan struct{}

	now func() time.Time
}

// NewMemoryStore creates a store whose sessions expire ttl after last save.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]chan struct{}),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = memoryEntry{session: s.Clone(), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || m.now().After(e.expires) {
		return nil, ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[s.ID]
	if !ok || m.now().After(e.expires) {
		return ErrSessionNotFound
	}
	m.sessions[s.ID] = memoryEntry{session: s.Clone(), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Lock uses a one-slot channel per session so waiting honours ctx.
func (m *MemoryStore) Lock(ctx context.Context, id string) (func(), error) {
	m.lockMu.Lock()
	ch, ok := m.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[id] = ch
	}
	m.lockMu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ErrLockTimeout
	}
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	now := m.now()
	m.mu.Lock()
	var expired []string
	for id, e := range m.sessions {
		if now.After(e.expires) {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	m.lockMu.Lock()
	for _, id := range expired {
		if ch, ok := m.locks[id]; ok && len(ch) == 0 {
			delete(m.locks, id)
		}
	}
	m.lockMu.Unlock()
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Printf("[form] swept %d expired sessions", n)
			}
		}
	}
}
