package session

import (
	"context"
	"sync"
)

// Repository holds the active session per user. Keying by user ID keeps
// at most one session per user.
type Repository interface {
	Get(ctx context.Context, userID int64) (*Session, bool, error)

	// Put stores s as the user's session, replacing any previous one.
	Put(ctx context.Context, s *Session) error

	// Delete removes s if it is still the user's session. A session that
	// has since been replaced is left alone.
	Delete(ctx context.Context, s *Session) error
}

// ResultRepository keeps the latest result per user.
type ResultRepository interface {
	Latest(ctx context.Context, userID int64) (*Result, bool, error)
	Save(ctx context.Context, r *Result) error
}

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[int64]*Session)}
}

func (m *MemoryRepository) Get(_ context.Context, userID int64) (*Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok, nil
}

func (m *MemoryRepository) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[s.UserID]; ok && cur.ID == s.ID {
		delete(m.sessions, s.UserID)
	}
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// MemoryResultRepository is an in-process ResultRepository.
type MemoryResultRepository struct {
	mu      sync.RWMutex
	results map[int64]*Result
}

// NewMemoryResultRepository returns an empty MemoryResultRepository.
func NewMemoryResultRepository() *MemoryResultRepository {
	return &MemoryResultRepository{results: make(map[int64]*Result)}
}

func (m *MemoryResultRepository) Latest(_ context.Context, userID int64) (*Result, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[userID]
	return r, ok, nil
}

func (m *MemoryResultRepository) Save(_ context.Context, r *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.UserID] = r
	return nil
}
