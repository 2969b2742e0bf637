package profile

import (
	"fmt"
	"time"
)

// DayLayout is the canonical calendar date format.
const DayLayout = "2006-01-02"

// Day is a calendar date in the deployment's configured time zone,
// stored as "YYYY-MM-DD". The zero value means "never".
type Day string

// DayOf returns the calendar day of t in loc. A nil loc means UTC.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc).Format(DayLayout))
}

// ParseDay accepts the canonical layout plus the legacy layouts older
// profile blobs were written with.
func ParseDay(s string) (Day, error) {
	if s == "" {
		return "", nil
	}
	for _, layout := range []string{DayLayout, time.RFC3339, "Mon Jan 02 2006", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t.Format(DayLayout)), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// IsZero reports whether d is unset.
func (d Day) IsZero() bool {
	return d == ""
}

// AddDays returns the day n calendar days after d. Zero days stay zero.
func (d Day) AddDays(n int) Day {
	if d.IsZero() {
		return d
	}
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return d
	}
	return Day(t.AddDate(0, 0, n).Format(DayLayout))
}

// String returns the canonical form.
func (d Day) String() string {
	return string(d)
}
