// Package notify carries engine output to a chat transport.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/quizmentor/internal/question"
	"github.com/abhisek/quizmentor/internal/scoring"
	"github.com/abhisek/quizmentor/internal/session"
)

// QuestionView is one question ready to show.
type QuestionView struct {
	UserID     int64
	SessionID  string
	Index      int
	Total      int
	Question   question.Question
	ReviewOnly bool
	// IssuedAt goes back to the engine with the answer so old buttons
	// can be recognised.
	IssuedAt time.Time
}

// ResultView is a finished session with its presentation extras.
type ResultView struct {
	session.Result
	Tier          scoring.Tier `json:"tier"`
	Motivation    string       `json:"motivation,omitempty"`
	Tip           string       `json:"tip,omitempty"`
	Streak        int          `json:"streak"`
	BestScore     int          `json:"bestScore"`
	NextMilestone int          `json:"nextMilestone,omitempty"`
}

// Notice is a short localized message identified by catalog key.
type Notice struct {
	UserID int64
	Key    string
	Args   map[string]string
}

// Notifier presents engine output to a user.
type Notifier interface {
	PresentQuestion(ctx context.Context, v QuestionView) error
	PresentResult(ctx context.Context, v ResultView) error
	PresentNotice(ctx context.Context, n Notice) error
}

type multi []Notifier

// Multi presents to every notifier in turn and joins their errors.
func Multi(ns ...Notifier) Notifier {
	return multi(ns)
}

func (m multi) PresentQuestion(ctx context.Context, v QuestionView) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.PresentQuestion(ctx, v))
	}
	return errors.Join(errs...)
}

func (m multi) PresentResult(ctx context.Context, v ResultView) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.PresentResult(ctx, v))
	}
	return errors.Join(errs...)
}

func (m multi) PresentNotice(ctx context.Context, no Notice) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.PresentNotice(ctx, no))
	}
	return errors.Join(errs...)
}
