package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/abhisek/quizmentor/internal/profile"
)

// FileProfileRepo keeps one JSON blob per user in a directory. Writes go
// to a temporary file that is synced and renamed over the old blob.
type FileProfileRepo struct {
	dir string

	mu        sync.Mutex
	revisions map[int64]int64
}

var _ profile.Repository = (*FileProfileRepo)(nil)

// NewFileProfileRepo creates dir if needed.
func NewFileProfileRepo(dir string) (*FileProfileRepo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	return &FileProfileRepo{dir: dir, revisions: make(map[int64]int64)}, nil
}

func (r *FileProfileRepo) path(userID int64) string {
	return filepath.Join(r.dir, strconv.FormatInt(userID, 10)+".json")
}

func (r *FileProfileRepo) Load(_ context.Context, userID int64) (*profile.Profile, error) {
	data, err := os.ReadFile(r.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return profile.New(userID, ""), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %d: %w", userID, err)
	}

	p, err := profile.Decode(userID, data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	p.Revision = r.revisions[userID]
	r.mu.Unlock()
	return p, nil
}

// Save rejects writes from a profile loaded before the last save in this
// process; other processes sharing the directory are not detected.
func (r *FileProfileRepo) Save(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur := r.revisions[p.UserID]; cur != p.Revision {
		return fmt.Errorf("save profile %d at revision %d: %w", p.UserID, p.Revision, ErrRevisionConflict)
	}

	data, err := profile.Encode(p)
	if err != nil {
		return fmt.Errorf("encode profile %d: %w", p.UserID, err)
	}
	if err := writeFileAtomic(r.path(p.UserID), data); err != nil {
		return fmt.Errorf("write profile %d: %w", p.UserID, err)
	}

	p.Revision++
	r.revisions[p.UserID] = p.Revision
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".profile-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
