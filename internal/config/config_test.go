package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", c.Store.Driver)
	assert.Equal(t, 1, c.DailyFreeSessions)
	assert.Equal(t, 5, c.MiniTestSize)
	assert.Equal(t, 15, c.FullTestSize)
	assert.Equal(t, 5*time.Minute, c.StaleWindow)
	assert.Equal(t, []string{"mixed"}, c.FreeTopics)
	assert.Equal(t, time.UTC, c.Location)
	assert.False(t, c.SES.Enabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("QUIZMENTOR_STORE", "postgres")
	t.Setenv("QUIZMENTOR_DATABASE_URL", "postgres://localhost/quiz")
	t.Setenv("QUIZMENTOR_DAILY_FREE_SESSIONS", "3")
	t.Setenv("QUIZMENTOR_STALE_WINDOW", "90s")
	t.Setenv("QUIZMENTOR_PREMIUM_USERS", "42, 7")
	t.Setenv("QUIZMENTOR_FREE_TOPICS", "mixed,grammar")
	t.Setenv("QUIZMENTOR_SES_FROM", "bot@example.com")
	t.Setenv("QUIZMENTOR_OPERATOR_EMAIL", "ops@example.com")

	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres", c.Store.Driver)
	assert.Equal(t, 3, c.DailyFreeSessions)
	assert.Equal(t, 90*time.Second, c.StaleWindow)
	assert.Equal(t, []int64{42, 7}, c.PremiumUsers)
	assert.True(t, c.IsPremiumUser(7))
	assert.False(t, c.IsPremiumUser(8))
	assert.Equal(t, []string{"mixed", "grammar"}, c.FreeTopics)
	assert.True(t, c.SES.Enabled())
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad int", "QUIZMENTOR_MINI_TEST_SIZE", "five"},
		{"bad duration", "QUIZMENTOR_STALE_WINDOW", "soon"},
		{"bad premium id", "QUIZMENTOR_PREMIUM_USERS", "alice"},
		{"unknown store", "QUIZMENTOR_STORE", "redis"},
		{"postgres without url", "QUIZMENTOR_STORE", "postgres"},
		{"zero size", "QUIZMENTOR_FULL_TEST_SIZE", "0"},
		{"threshold out of range", "QUIZMENTOR_WEAK_THRESHOLD", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("QUIZMENTOR_FULL_TEST_SIZE=20\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("QUIZMENTOR_FULL_TEST_SIZE") })

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, c.FullTestSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
