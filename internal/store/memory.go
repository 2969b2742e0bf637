package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/quizmentor/internal/profile"
)

type memoryRecord struct {
	data     []byte
	revision int64
}

// MemoryProfileRepo is an in-process profile.Repository with the same
// revision semantics as the SQL store.
type MemoryProfileRepo struct {
	mu      sync.Mutex
	records map[int64]memoryRecord

	// FailSaves makes every Save return the given error. Test hook.
	FailSaves error
}

var _ profile.Repository = (*MemoryProfileRepo)(nil)

// NewMemoryProfileRepo returns an empty repository.
func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{records: make(map[int64]memoryRecord)}
}

func (m *MemoryProfileRepo) Load(_ context.Context, userID int64) (*profile.Profile, error) {
	m.mu.Lock()
	rec, ok := m.records[userID]
	m.mu.Unlock()

	if !ok {
		return profile.New(userID, ""), nil
	}
	p, err := profile.Decode(userID, rec.data)
	if err != nil {
		return nil, err
	}
	p.Revision = rec.revision
	return p, nil
}

func (m *MemoryProfileRepo) Save(_ context.Context, p *profile.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSaves != nil {
		return m.FailSaves
	}
	if cur := m.records[p.UserID].revision; cur != p.Revision {
		return fmt.Errorf("save profile %d at revision %d: %w", p.UserID, p.Revision, ErrRevisionConflict)
	}

	data, err := profile.Encode(p)
	if err != nil {
		return fmt.Errorf("encode profile %d: %w", p.UserID, err)
	}
	p.Revision++
	m.records[p.UserID] = memoryRecord{data: data, revision: p.Revision}
	return nil
}

// Put seeds a raw blob, as an older deployment might have written it.
func (m *MemoryProfileRepo) Put(userID int64, blob []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[userID]
	m.records[userID] = memoryRecord{data: blob, revision: rec.revision + 1}
}
