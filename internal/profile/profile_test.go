package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOf(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)

	// 20:00 UTC is already the next day in India.
	ts := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, Day("2025-03-10"), DayOf(ts, nil))
	assert.Equal(t, Day("2025-03-11"), DayOf(ts, kolkata))
}

func TestDayAddDays(t *testing.T) {
	tests := []struct {
		day  Day
		n    int
		want Day
	}{
		{"2025-03-10", 1, "2025-03-11"},
		{"2025-03-01", -1, "2025-02-28"},
		{"2024-12-31", 1, "2025-01-01"},
		{"", 1, ""},
	}
	for _, tt := range tests {
		if got := tt.day.AddDays(tt.n); got != tt.want {
			t.Errorf("%q.AddDays(%d) = %q, want %q", tt.day, tt.n, got, tt.want)
		}
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    Day
		wantErr bool
	}{
		{"", "", false},
		{"2025-03-10", "2025-03-10", false},
		{"Mon Mar 10 2025", "2025-03-10", false},
		{"2025-03-10T08:00:00Z", "2025-03-10", false},
		{"yesterday", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDay(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestWrongBankSetSemantics(t *testing.T) {
	p := New(1, "2025-03-10")
	p.AddWrong("q1")
	p.AddWrong("q2")
	p.AddWrong("q1")
	assert.Equal(t, []string{"q1", "q2"}, p.WrongBank)

	p.RemoveWrong("q1")
	p.RemoveWrong("missing")
	assert.Equal(t, []string{"q2"}, p.WrongBank)
	assert.True(t, p.InWrongBank("q2"))
	assert.False(t, p.InWrongBank("q1"))
}

func TestCloneIsDeep(t *testing.T) {
	p := New(1, "")
	p.AddWrong("q1")
	c := p.Clone()
	c.AddWrong("q2")
	assert.Equal(t, []string{"q1"}, p.WrongBank)
}

func TestDecodeEmptyGivesDefaults(t *testing.T) {
	p, err := Decode(42, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, DefaultLanguage, p.Language)
	assert.Equal(t, TopicMixed, p.TopicPreference)
	assert.Empty(t, p.WrongBank)
	assert.Equal(t, CurrentSchemaVersion, p.SchemaVersion)
}

func TestDecodeRoundTrip(t *testing.T) {
	p := New(7, "2025-01-01")
	p.Language = "kn"
	p.TopicPreference = "grammar"
	p.LifetimeAttempts = 10
	p.LifetimeCorrect = 6
	p.Streak = 3
	p.LastSessionDate = "2025-03-10"
	p.AddWrong("q9")

	data, err := Encode(p)
	require.NoError(t, err)

	got, err := Decode(7, data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecodeMigratesLegacyKeys(t *testing.T) {
	blob := `{
		"uiLang": "ur",
		"mode": "rc",
		"wrongQuestions": ["a", "b", "a", ""],
		"totalAttempted": 20,
		"totalCorrect": 15,
		"streakDays": 4,
		"lastPracticeDate": "Mon Mar 10 2025",
		"lastFreeTestDate": "2025-03-10",
		"freeTestsToday": 1,
		"someUnknownKey": {"x": 1}
	}`

	p, err := Decode(5, []byte(blob))
	require.NoError(t, err)

	assert.Equal(t, "ur", p.Language)
	assert.Equal(t, "rc", p.TopicPreference)
	assert.Equal(t, []string{"a", "b"}, p.WrongBank)
	assert.Equal(t, 20, p.LifetimeAttempts)
	assert.Equal(t, 15, p.LifetimeCorrect)
	assert.Equal(t, 4, p.Streak)
	assert.Equal(t, Day("2025-03-10"), p.LastSessionDate)
	assert.Equal(t, Day("2025-03-10"), p.LastFreeDate)
	assert.Equal(t, 1, p.FreeSessionsUsedToday)
}

func TestDecodeCurrentKeysWinOverLegacy(t *testing.T) {
	p, err := Decode(5, []byte(`{"language":"en","uiLang":"kn","streak":2,"streakDays":9}`))
	require.NoError(t, err)
	assert.Equal(t, "en", p.Language)
	assert.Equal(t, 2, p.Streak)
}

func TestDecodeToleratesBadFields(t *testing.T) {
	p, err := Decode(5, []byte(`{"language":"kn","streak":"many","bestScore":-3,"lastSessionDate":"garbage"}`))
	require.NoError(t, err)
	assert.Equal(t, "kn", p.Language)
	assert.Equal(t, 0, p.Streak)
	assert.Equal(t, 0, p.BestScore)
	assert.True(t, p.LastSessionDate.IsZero())
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode(5, []byte(`{"language":`))
	assert.Error(t, err)
}
