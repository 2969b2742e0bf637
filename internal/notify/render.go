package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/quizmentor/internal/i18n"
)

// Message kinds.
const (
	MessageQuestion = "question"
	MessageResult   = "result"
	MessageNotice   = "notice"
)

// Message is transport-neutral rendered output.
type Message struct {
	Kind string `json:"kind"`
	Text string `json:"text"`

	// Question messages only.
	Options       []string  `json:"options,omitempty"`
	QuestionIndex *int      `json:"questionIndex,omitempty"`
	Total         int       `json:"total,omitempty"`
	IssuedAt      time.Time `json:"issuedAt,omitempty"`

	// Result messages only.
	Result *ResultView `json:"result,omitempty"`
}

// OptionLabels are shown before each option.
var OptionLabels = []string{"A", "B", "C", "D"}

// Renderer turns views into localized messages.
type Renderer struct {
	t i18n.Translator
}

func NewRenderer(t i18n.Translator) *Renderer {
	return &Renderer{t: t}
}

func (r *Renderer) text(ctx context.Context, userID int64, key string, args map[string]string) string {
	return i18n.Format(r.t.Text(ctx, userID, key), args)
}

func (r *Renderer) Question(ctx context.Context, v QuestionView) Message {
	var b strings.Builder
	header := r.text(ctx, v.UserID, "question.header", map[string]string{
		"n":     strconv.Itoa(v.Index + 1),
		"total": strconv.Itoa(v.Total),
	})
	if v.ReviewOnly {
		header = r.text(ctx, v.UserID, "question.review", nil) + " · " + header
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	if v.Question.Passage != "" {
		b.WriteString(v.Question.Passage)
		b.WriteString("\n\n")
	}
	b.WriteString(v.Question.Prompt)

	opts := make([]string, len(v.Question.Options))
	for i, o := range v.Question.Options {
		label := strconv.Itoa(i + 1)
		if i < len(OptionLabels) {
			label = OptionLabels[i]
		}
		opts[i] = label + ") " + o
		b.WriteString("\n" + opts[i])
	}

	idx := v.Index
	return Message{Kind: MessageQuestion, Text: b.String(), Options: opts, QuestionIndex: &idx, Total: v.Total, IssuedAt: v.IssuedAt}
}

func (r *Renderer) Result(ctx context.Context, v ResultView) Message {
	uid := v.UserID
	lines := []string{}
	if v.ReviewOnly {
		lines = append(lines, r.text(ctx, uid, "result.review_title", nil))
	} else {
		lines = append(lines, r.text(ctx, uid, "result.title", nil))
	}
	lines = append(lines,
		r.text(ctx, uid, "result.score", map[string]string{
			"score": strconv.Itoa(v.Score),
			"total": strconv.Itoa(v.Total),
		}),
		r.text(ctx, uid, "result.accuracy", map[string]string{"percent": strconv.Itoa(percent(v.Score, v.Total))}),
	)
	if v.Skipped > 0 {
		lines = append(lines, r.text(ctx, uid, "result.skipped", map[string]string{"skipped": strconv.Itoa(v.Skipped)}))
	}
	if v.Duration > 0 {
		lines = append(lines, r.text(ctx, uid, "result.time", map[string]string{
			"seconds": fmt.Sprintf("%.1f", v.Duration.Seconds()),
		}))
	}
	if v.ReviewOnly {
		lines = append(lines, r.text(ctx, uid, "result.review_note", nil))
	} else if v.Streak > 0 {
		lines = append(lines, r.text(ctx, uid, "result.streak", map[string]string{
			"streak":    strconv.Itoa(v.Streak),
			"milestone": strconv.Itoa(v.NextMilestone),
		}))
	}
	if len(v.WeakTopics) > 0 {
		lines = append(lines, r.text(ctx, uid, "result.weak", map[string]string{"topics": strings.Join(v.WeakTopics, ", ")}))
	}
	if v.Motivation != "" {
		lines = append(lines, "", v.Motivation)
	}
	if v.Tip != "" {
		lines = append(lines, r.text(ctx, uid, "result.tip", map[string]string{"tip": v.Tip}))
	}

	view := v
	return Message{Kind: MessageResult, Text: strings.Join(lines, "\n"), Result: &view}
}

func (r *Renderer) Notice(ctx context.Context, n Notice) Message {
	return Message{Kind: MessageNotice, Text: r.text(ctx, n.UserID, n.Key, n.Args)}
}

func percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (score*100 + total/2) / total
}
