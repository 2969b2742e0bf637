package session

import "time"

// DefaultStaleWindow is how long an issued interaction stays valid.
const DefaultStaleWindow = 5 * time.Minute

// IsStale reports whether an interaction issued at issued is older than
// window at now. A zero issued time or a non-positive window is never
// stale; interactions stamped in the future are not stale either.
func IsStale(issued, now time.Time, window time.Duration) bool {
	if issued.IsZero() || window <= 0 {
		return false
	}
	return now.Sub(issued) > window
}
