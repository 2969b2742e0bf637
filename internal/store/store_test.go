package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmentor/internal/profile"
	"github.com/abhisek/quizmentor/internal/question"
	"github.com/abhisek/quizmentor/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not checked here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenDialectRejectsUnknown(t *testing.T) {
	_, err := OpenDialect("oracle", "x")
	assert.Error(t, err)
}

func TestProfileRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Profiles()

	p, err := repo.Load(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Revision)
	assert.Equal(t, profile.DefaultLanguage, p.Language)

	p.Language = "kn"
	p.Streak = 3
	p.AddWrong("q1")
	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, int64(1), p.Revision)

	got, err := repo.Load(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	got.Streak = 4
	require.NoError(t, repo.Save(ctx, got))
	assert.Equal(t, int64(2), got.Revision)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProfileRepoRevisionConflict(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Profiles()

	a, err := repo.Load(ctx, 5)
	require.NoError(t, err)
	b, err := repo.Load(ctx, 5)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, a))
	err = repo.Save(ctx, b)
	assert.True(t, errors.Is(err, ErrRevisionConflict), "got %v", err)

	// Reload and retry succeeds.
	b, err = repo.Load(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, b))

	stale := a.Clone()
	stale.Revision = 1
	assert.ErrorIs(t, repo.Save(ctx, stale), ErrRevisionConflict)
}

func TestProfileRepoMigratesLegacyRows(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.DB().Exec(`INSERT INTO profiles (user_id, data, revision, updated_at) VALUES (?, ?, ?, ?)`,
		9, `{"uiLang":"ur","streakDays":6,"wrongQuestions":["a"]}`, 3, 0)
	require.NoError(t, err)

	p, err := s.Profiles().Load(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "ur", p.Language)
	assert.Equal(t, 6, p.Streak)
	assert.Equal(t, []string{"a"}, p.WrongBank)
	assert.Equal(t, int64(3), p.Revision)
}

func TestResultRepo(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Results()

	_, ok, err := repo.Latest(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Save(ctx, &session.Result{UserID: 1, Score: 2, Total: 5}))
	require.NoError(t, repo.Save(ctx, &session.Result{UserID: 1, Score: 4, Total: 5, WeakTopics: []string{"rc"}}))

	got, ok, err := repo.Latest(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, got.Score)
	assert.Equal(t, []string{"rc"}, got.WeakTopics)
}

func testSession(t *testing.T, userID int64) *session.Session {
	t.Helper()
	pool := make([]question.Question, 3)
	for i := range pool {
		pool[i] = question.Question{
			ID:           fmt.Sprintf("q%d", i),
			Prompt:       "prompt",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
			Topic:        "grammar",
		}
	}
	s, err := session.New(userID, pool, session.Options{Mode: "mini"}, time.Unix(1_700_000_000, 0))
	require.NoError(t, err)
	return s
}

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Sessions()

	_, ok, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	s := testSession(t, 7)
	require.NoError(t, repo.Put(ctx, s))
	assert.Equal(t, int64(1), s.Revision)

	// Two processes resume the same session; only the first write lands.
	a, ok, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	b, _, err := repo.Get(ctx, 7)
	require.NoError(t, err)

	_, err = a.Answer(0, 1, time.Unix(1_700_000_010, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Put(ctx, a))

	_, err = b.Skip(0, time.Unix(1_700_000_011, 0))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Put(ctx, b), ErrRevisionConflict)

	got, _, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Equal(t, 1, got.Score)
	assert.True(t, got.Active())

	// A new session replaces the old one, and the old copy can no longer
	// write or delete.
	fresh := testSession(t, 7)
	require.NoError(t, repo.Put(ctx, fresh))
	_, err = got.Skip(1, time.Unix(1_700_000_020, 0))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Put(ctx, got), ErrRevisionConflict)
	require.NoError(t, repo.Delete(ctx, got))

	cur, ok, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fresh.ID, cur.ID)
	assert.Equal(t, 0, cur.CurrentIndex)

	require.NoError(t, repo.Delete(ctx, fresh))
	_, ok, err = repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPendingProfilesKeepUnsavedChanges(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryProfileRepo()
	repo := NewPendingProfiles(inner)
	assert.Same(t, repo, NewPendingProfiles(repo))

	p, err := repo.Load(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	inner.FailSaves = errors.New("disk full")
	p, err = repo.Load(ctx, 3)
	require.NoError(t, err)
	p.FreeSessionsUsedToday = 1
	p.WrongBank = []string{"q1"}
	assert.Error(t, repo.Save(ctx, p))
	assert.True(t, repo.Pending(3))

	// The outage does not roll the profile back.
	got, err := repo.Load(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FreeSessionsUsedToday)
	assert.Equal(t, []string{"q1"}, got.WrongBank)
	got.WrongBank[0] = "mutated"
	again, err := repo.Load(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, again.WrongBank)

	// Once the store is back the pending copy is flushed.
	inner.FailSaves = nil
	require.NoError(t, repo.Save(ctx, again))
	assert.False(t, repo.Pending(3))
	stored, err := inner.Load(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FreeSessionsUsedToday)
}

func TestPendingProfilesDropOnConflict(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryProfileRepo()
	repo := NewPendingProfiles(inner)

	inner.FailSaves = errors.New("timeout")
	p, err := repo.Load(ctx, 4)
	require.NoError(t, err)
	p.Streak = 9
	assert.Error(t, repo.Save(ctx, p))
	require.True(t, repo.Pending(4))

	// Another writer moves the record on.
	inner.FailSaves = nil
	other, err := inner.Load(ctx, 4)
	require.NoError(t, err)
	other.Streak = 2
	require.NoError(t, inner.Save(ctx, other))

	p, err = repo.Load(ctx, 4)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, p), ErrRevisionConflict)
	assert.False(t, repo.Pending(4))

	got, err := repo.Load(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Streak)
}

func TestFileProfileRepo(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewFileProfileRepo(dir)
	require.NoError(t, err)

	p, err := repo.Load(ctx, 3)
	require.NoError(t, err)
	p.BestScore = 5
	require.NoError(t, repo.Save(ctx, p))

	_, err = os.Stat(filepath.Join(dir, "3.json"))
	require.NoError(t, err)

	got, err := repo.Load(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, got.BestScore)

	stale := got.Clone()
	require.NoError(t, repo.Save(ctx, got))
	assert.ErrorIs(t, repo.Save(ctx, stale), ErrRevisionConflict)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemoryProfileRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfileRepo()

	repo.Put(4, []byte(`{"totalAttempted":7,"totalCorrect":5}`))
	p, err := repo.Load(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 7, p.LifetimeAttempts)
	assert.Equal(t, 5, p.LifetimeCorrect)

	require.NoError(t, repo.Save(ctx, p))
	assert.ErrorIs(t, repo.Save(ctx, &profile.Profile{UserID: 4}), ErrRevisionConflict)

	boom := errors.New("disk full")
	repo.FailSaves = boom
	assert.ErrorIs(t, repo.Save(ctx, p), boom)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("QUIZMENTOR_DB", filepath.Join(dir, "explicit", "q.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "explicit", "q.db"), p)

	t.Setenv("QUIZMENTOR_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quizmentor", "quizmentor.db"), p)

	_, err = os.Stat(filepath.Join(dir, "quizmentor"))
	assert.NoError(t, err)
}
