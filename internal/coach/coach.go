// Package coach asks a language model for a one-line study tip after a
// session with weak topics.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmentor/internal/llm"
	"github.com/abhisek/quizmentor/internal/session"
)

const (
	maxTipRunes = 280
	maxTokens   = 256
)

var tipSchema = &llm.Schema{
	Name:        "study-tip",
	Description: "A single short study tip",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tip": map[string]any{
				"type":        "string",
				"description": "One or two sentences of practical advice",
				"minLength":   1,
			},
		},
		"required":             []string{"tip"},
		"additionalProperties": false,
	},
}

const systemPrompt = `You coach candidates preparing for a teacher eligibility exam.
Given the topics a candidate struggled with in a short multiple-choice test,
reply with one concrete study tip of at most two sentences. Be encouraging
and specific. Do not repeat the score back.`

var languageNames = map[string]string{
	"en": "English",
	"kn": "Kannada",
	"ur": "Urdu",
}

// Coach produces study tips. A nil *Coach or one without a provider
// returns empty tips.
type Coach struct {
	provider llm.Provider
	timeout  time.Duration
	log      logrus.FieldLogger
}

// New returns a Coach backed by p. A nil p disables tips.
func New(p llm.Provider, timeout time.Duration, log logrus.FieldLogger) *Coach {
	return &Coach{provider: p, timeout: timeout, log: log}
}

// Enabled reports whether tips will be requested.
func (c *Coach) Enabled() bool {
	return c != nil && c.provider != nil
}

// Tip returns a tip for r's weak topics in language, or "" when there is
// nothing to coach or the model fails.
func (c *Coach) Tip(ctx context.Context, r *session.Result, language string) string {
	if !c.Enabled() || r == nil || len(r.WeakTopics) == 0 {
		return ""
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, "coach")

	reply, err := c.provider.Generate(ctx, llm.Prompt{
		System:      systemPrompt,
		User:        userPrompt(r, language),
		Schema:      tipSchema,
		MaxTokens:   maxTokens,
		Temperature: 0.4,
	})
	if err != nil {
		c.log.WithError(err).WithField("user_id", r.UserID).Warn("coach tip unavailable")
		return ""
	}

	var out struct {
		Tip string `json:"tip"`
	}
	if err := json.Unmarshal(reply.Content, &out); err != nil {
		c.log.WithError(err).Warn("coach reply not decodable")
		return ""
	}
	return clip(strings.TrimSpace(out.Tip), maxTipRunes)
}

func userPrompt(r *session.Result, language string) string {
	name, ok := languageNames[language]
	if !ok {
		name = languageNames["en"]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reply in %s.\n", name)
	fmt.Fprintf(&b, "Answered %d of %d questions, %d correct.\n", r.Answered, r.Total, r.Score)
	b.WriteString("Weak topics:\n")
	for _, ts := range r.Topics {
		if !contains(r.WeakTopics, ts.Topic) {
			continue
		}
		fmt.Fprintf(&b, "- %s: %d/%d correct\n", ts.Topic, ts.Correct, ts.Answered)
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
