package scoring

import "github.com/abhisek/quizmentor/internal/profile"

// NextStreak returns the streak after practicing on today, given the
// previous practice day.
func NextStreak(streak int, last, today profile.Day) int {
	switch {
	case last.IsZero():
		return 1
	case last == today:
		return streak
	case last.AddDays(1) == today:
		return streak + 1
	default:
		return 1
	}
}

// NextStreakMilestone returns the next streak milestone above current.
func NextStreakMilestone(current int) int {
	for _, t := range []int{3, 7, 14, 30} {
		if t > current {
			return t
		}
	}
	// Beyond 30, every 30 days.
	return ((current / 30) + 1) * 30
}
