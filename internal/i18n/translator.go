package i18n

import (
	"context"
	"math/rand/v2"

	"github.com/abhisek/quizmentor/internal/profile"
	"github.com/abhisek/quizmentor/internal/scoring"
)

// Translator resolves strings for a user in that user's language.
type Translator interface {
	Text(ctx context.Context, userID int64, key string) string
	Lines(ctx context.Context, userID int64, key string) []string
}

// LanguageFunc reports a user's language code.
type LanguageFunc func(ctx context.Context, userID int64) string

// ProfileLanguage reads the language from the user's stored profile,
// falling back to English when the profile cannot be loaded.
func ProfileLanguage(repo profile.Repository) LanguageFunc {
	return func(ctx context.Context, userID int64) string {
		p, err := repo.Load(ctx, userID)
		if err != nil || p.Language == "" {
			return Fallback
		}
		return p.Language
	}
}

// Fixed always answers lang.
func Fixed(lang string) LanguageFunc {
	return func(context.Context, int64) string { return lang }
}

// Localizer is a Translator over a Catalog.
type Localizer struct {
	catalog *Catalog
	lang    LanguageFunc
}

// NewLocalizer returns a Localizer that looks up each user's language
// with lang.
func NewLocalizer(c *Catalog, lang LanguageFunc) *Localizer {
	return &Localizer{catalog: c, lang: lang}
}

func (l *Localizer) Text(ctx context.Context, userID int64, key string) string {
	return l.catalog.Text(l.lang(ctx, userID), key)
}

func (l *Localizer) Lines(ctx context.Context, userID int64, key string) []string {
	return l.catalog.Lines(l.lang(ctx, userID), key)
}

// MotivationKey maps a tier to one of three line groups.
func MotivationKey(t scoring.Tier) string {
	switch t {
	case scoring.TierPerfect:
		return "motivation.perfect"
	case scoring.TierGood, scoring.TierMedium:
		return "motivation.good"
	default:
		return "motivation.low"
	}
}

// Motivation picks one line for tier at random.
func Motivation(ctx context.Context, t Translator, userID int64, tier scoring.Tier, rng *rand.Rand) string {
	lines := t.Lines(ctx, userID, MotivationKey(tier))
	if len(lines) == 0 {
		return ""
	}
	return lines[rng.IntN(len(lines))]
}
