// Package scoring folds completed sessions into the user's lifetime
// statistics, streak and wrong-answer bank.
package scoring

import (
	"github.com/abhisek/quizmentor/internal/profile"
	"github.com/abhisek/quizmentor/internal/session"
)

// Finalize applies a completed session to p. Review-only sessions leave
// the profile untouched. Reports whether p changed.
func Finalize(p *profile.Profile, s *session.Session, today profile.Day) bool {
	if s.ReviewOnly {
		return false
	}

	p.LifetimeAttempts += len(s.Log)
	p.LifetimeCorrect += s.Score
	p.BestScore = max(p.BestScore, s.Score)
	p.SessionsCompleted++

	p.Streak = NextStreak(p.Streak, p.LastSessionDate, today)
	p.LastSessionDate = today
	return true
}

// UpdateWrongBank adds every missed or skipped question to the bank and
// retires every correctly answered one. Review-only sessions are ignored.
// Reports whether p changed.
func UpdateWrongBank(p *profile.Profile, s *session.Session) bool {
	if s.ReviewOnly {
		return false
	}
	for _, e := range s.Log {
		if e.Correct {
			p.RemoveWrong(e.QuestionID)
		} else {
			p.AddWrong(e.QuestionID)
		}
	}
	return true
}

// SessionTier is the motivational tier of a session. A skip is an
// attempted question that earned nothing, so the ratio is taken over the
// whole log: four right and one skipped out of five is TierGood, not
// TierPerfect. Result.Answered still excludes skips for display.
func SessionTier(s *session.Session) Tier {
	return TierFor(s.Score, len(s.Log))
}
