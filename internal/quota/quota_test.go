package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/quizmentor/internal/profile"
)

func TestDailyLimit(t *testing.T) {
	l := New(0)
	p := profile.New(1, "")
	day := profile.Day("2025-03-10")

	assert.True(t, l.CanStartFreeSession(p, day))
	l.RecordFreeSessionStart(p, day)
	assert.False(t, l.CanStartFreeSession(p, day))
	assert.Equal(t, 0, l.Remaining(p, day))

	next := day.AddDays(1)
	assert.Equal(t, next, NextReset(day))
	assert.Equal(t, 1, l.Remaining(p, next))
	assert.True(t, l.CanStartFreeSession(p, next))
	assert.Equal(t, 0, p.FreeSessionsUsedToday)
	assert.Equal(t, next, p.LastFreeDate)
}

func TestQuotaLaw(t *testing.T) {
	// For any sequence of starts within one day, at most DailyLimit succeed.
	for _, limit := range []int{1, 2, 3} {
		l := New(limit)
		p := profile.New(1, "")
		day := profile.Day("2025-03-10")

		started := 0
		for range 10 {
			if l.CanStartFreeSession(p, day) {
				l.RecordFreeSessionStart(p, day)
				started++
			}
		}
		assert.Equal(t, limit, started, "limit %d", limit)
	}
}

func TestPremiumBypasses(t *testing.T) {
	l := New(1)
	p := profile.New(1, "")
	p.Premium = true
	day := profile.Day("2025-03-10")

	for range 5 {
		assert.True(t, l.CanStartFreeSession(p, day))
		l.RecordFreeSessionStart(p, day)
	}
	assert.Equal(t, 0, p.FreeSessionsUsedToday)
}

func TestStaleCounterFromEarlierDay(t *testing.T) {
	l := New(1)
	p := profile.New(1, "")
	p.LastFreeDate = "2025-03-01"
	p.FreeSessionsUsedToday = 5

	assert.True(t, l.CanStartFreeSession(p, "2025-03-10"))
}
