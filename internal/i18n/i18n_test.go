package i18n

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmentor/internal/profile"
	"github.com/abhisek/quizmentor/internal/scoring"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "kn", "ur"}, c.Languages())
	assert.True(t, c.Has("kn"))
	assert.False(t, c.Has("fr"))
	assert.Equal(t, "ಕನ್ನಡ", c.Name("kn"))
	assert.Equal(t, "fr", c.Name("fr"))
}

func TestTextFallback(t *testing.T) {
	c := MustLoadCatalog()
	tests := []struct {
		name, lang, key, want string
	}{
		{"own language", "ur", "result.title", "🎉 ٹیسٹ مکمل!"},
		{"falls back to english", "kn", "notice.stale", c.Text("en", "notice.stale")},
		{"unknown language", "fr", "result.title", "🎉 Test Completed!"},
		{"missing key", "en", "nope", "[missing: nope]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Text(tt.lang, tt.key))
		})
	}
}

func TestEveryLanguageHasMotivation(t *testing.T) {
	c := MustLoadCatalog()
	for _, lang := range c.Languages() {
		for _, tier := range scoring.AllTiers() {
			lines := c.langs[lang].Lines[MotivationKey(tier)]
			assert.NotEmpty(t, lines, "%s %s", lang, tier)
		}
	}
}

func TestEnglishCoversEveryKey(t *testing.T) {
	c := MustLoadCatalog()
	en := c.langs[Fallback]
	for _, lang := range c.Languages() {
		for key := range c.langs[lang].Text {
			_, ok := en.Text[key]
			assert.True(t, ok, "%s has %q but english does not", lang, key)
		}
	}
}

func TestFormat(t *testing.T) {
	got := Format("Question {n} of {total}", map[string]string{"n": "2", "total": "5"})
	assert.Equal(t, "Question 2 of 5", got)
	assert.Equal(t, "plain", Format("plain", nil))
}

func TestLocalizerUsesProfileLanguage(t *testing.T) {
	ctx := context.Background()
	repo := &stubRepo{p: &profile.Profile{UserID: 1, Language: "kn"}}
	l := NewLocalizer(MustLoadCatalog(), ProfileLanguage(repo))

	assert.Equal(t, "🎉 ಪರೀಕ್ಷೆ ಮುಗಿದಿದೆ!", l.Text(ctx, 1, "result.title"))

	rng := rand.New(rand.NewPCG(1, 2))
	line := Motivation(ctx, l, 1, scoring.TierPerfect, rng)
	assert.Contains(t, MustLoadCatalog().Lines("kn", "motivation.perfect"), line)

	repo.err = assert.AnError
	assert.Equal(t, "🎉 Test Completed!", l.Text(ctx, 1, "result.title"))
}

func TestMotivationKey(t *testing.T) {
	assert.Equal(t, "motivation.perfect", MotivationKey(scoring.TierPerfect))
	assert.Equal(t, "motivation.good", MotivationKey(scoring.TierMedium))
	assert.Equal(t, "motivation.low", MotivationKey(scoring.TierLow))
	assert.Equal(t, "motivation.low", MotivationKey(scoring.TierVeryLow))
}

type stubRepo struct {
	p   *profile.Profile
	err error
}

func (s *stubRepo) Load(context.Context, int64) (*profile.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.p, nil
}

func (s *stubRepo) Save(context.Context, *profile.Profile) error { return s.err }
