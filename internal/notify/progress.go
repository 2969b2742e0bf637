package notify

import (
	"context"
	"strconv"

	"github.com/abhisek/quizmentor/internal/profile"
)

// MessageProgress is a lifetime stats summary.
const MessageProgress = "progress"

// Progress renders p's lifetime stats.
func (r *Renderer) Progress(ctx context.Context, p *profile.Profile) Message {
	uid := p.UserID
	if p.SessionsCompleted == 0 {
		return Message{Kind: MessageProgress, Text: r.text(ctx, uid, "progress.none", nil)}
	}
	text := r.text(ctx, uid, "progress.title", nil) + "\n\n" +
		r.text(ctx, uid, "progress.tests", map[string]string{"sessions": strconv.Itoa(p.SessionsCompleted)}) + "\n" +
		r.text(ctx, uid, "progress.total", map[string]string{
			"attempts": strconv.Itoa(p.LifetimeAttempts),
			"percent":  strconv.Itoa(percent(p.LifetimeCorrect, p.LifetimeAttempts)),
		}) + "\n" +
		r.text(ctx, uid, "progress.best", map[string]string{"best": strconv.Itoa(p.BestScore)}) + "\n" +
		r.text(ctx, uid, "progress.streak", map[string]string{"streak": strconv.Itoa(p.Streak)}) + "\n" +
		r.text(ctx, uid, "progress.bank", map[string]string{"bank": strconv.Itoa(len(p.WrongBank))}) + "\n\n" +
		r.text(ctx, uid, "progress.improvement", nil)
	return Message{Kind: MessageProgress, Text: text}
}
