// Package quota enforces the daily allowance of free practice sessions.
package quota

import "github.com/abhisek/quizmentor/internal/profile"

// DefaultDailyLimit is the number of free sessions per calendar day.
const DefaultDailyLimit = 1

// Limiter gates session starts for non-premium users.
type Limiter struct {
	DailyLimit int
}

// New returns a Limiter allowing limit sessions per day. Non-positive
// limits fall back to DefaultDailyLimit.
func New(limit int) *Limiter {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Limiter{DailyLimit: limit}
}

// CanStartFreeSession reports whether p may start another session today.
// A date change resets the counter first, so the profile may be mutated.
func (l *Limiter) CanStartFreeSession(p *profile.Profile, today profile.Day) bool {
	if p.Premium {
		return true
	}
	rollover(p, today)
	return p.FreeSessionsUsedToday < l.limit()
}

// RecordFreeSessionStart counts one session against today's allowance.
// It is a no-op for premium users.
func (l *Limiter) RecordFreeSessionStart(p *profile.Profile, today profile.Day) {
	if p.Premium {
		return
	}
	rollover(p, today)
	p.FreeSessionsUsedToday++
}

// Remaining returns how many free sessions p has left today.
func (l *Limiter) Remaining(p *profile.Profile, today profile.Day) int {
	used := p.FreeSessionsUsedToday
	if p.LastFreeDate != today {
		used = 0
	}
	if r := l.limit() - used; r > 0 {
		return r
	}
	return 0
}

// NextReset is the first day on which the allowance is available again.
func NextReset(today profile.Day) profile.Day {
	return today.AddDays(1)
}

func (l *Limiter) limit() int {
	if l == nil || l.DailyLimit <= 0 {
		return DefaultDailyLimit
	}
	return l.DailyLimit
}

func rollover(p *profile.Profile, today profile.Day) {
	if p.LastFreeDate != today {
		p.LastFreeDate = today
		p.FreeSessionsUsedToday = 0
	}
}
