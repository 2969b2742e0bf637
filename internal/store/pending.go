package store

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/quizmentor/internal/profile"
)

// PendingProfiles wraps a profile.Repository and remembers profiles whose
// save failed. Later loads return the remembered copy until a save goes
// through, so a store outage does not roll back quota, streak or
// wrong-bank changes for the life of the process.
//
// A revision conflict drops the remembered copy: another writer got
// there first and its record wins on the next load.
type PendingProfiles struct {
	inner profile.Repository

	mu      sync.Mutex
	pending map[int64]*profile.Profile
}

var _ profile.Repository = (*PendingProfiles)(nil)

// NewPendingProfiles wraps inner. Wrapping a *PendingProfiles returns it
// unchanged.
func NewPendingProfiles(inner profile.Repository) *PendingProfiles {
	if p, ok := inner.(*PendingProfiles); ok {
		return p
	}
	return &PendingProfiles{inner: inner, pending: make(map[int64]*profile.Profile)}
}

func (r *PendingProfiles) Load(ctx context.Context, userID int64) (*profile.Profile, error) {
	r.mu.Lock()
	p, ok := r.pending[userID]
	r.mu.Unlock()
	if ok {
		return p.Clone(), nil
	}
	return r.inner.Load(ctx, userID)
}

func (r *PendingProfiles) Save(ctx context.Context, p *profile.Profile) error {
	err := r.inner.Save(ctx, p)

	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case err == nil, errors.Is(err, ErrRevisionConflict):
		delete(r.pending, p.UserID)
	default:
		r.pending[p.UserID] = p.Clone()
	}
	return err
}

// Pending reports whether userID has an unsaved profile.
func (r *PendingProfiles) Pending(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[userID]
	return ok
}
