package session

import (
	"sort"
	"time"
)

// DefaultWeakThreshold marks a topic as weak below this accuracy.
const DefaultWeakThreshold = 0.5

// TopicStat is per-topic performance within one session.
type TopicStat struct {
	Topic    string  `json:"topic"`
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Result summarizes a completed session.
type Result struct {
	SessionID  string `json:"sessionId"`
	UserID     int64  `json:"userId"`
	Mode       string `json:"mode,omitempty"`
	ReviewOnly bool   `json:"reviewOnly"`

	Total int `json:"total"`
	Score int `json:"score"`

	// Answered counts logged entries that were not skips.
	Answered int `json:"answered"`

	// Skipped is Total - Answered, so it includes questions never reached
	// when the session ended early.
	Skipped int `json:"skipped"`

	// Wrong is Answered - Score.
	Wrong int `json:"wrong"`

	// Logged is the number of log entries, skips included.
	Logged int `json:"logged"`

	Accuracy   float64       `json:"accuracy"`
	EndedEarly bool          `json:"endedEarly"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finishedAt"`

	Breakdown  []Entry     `json:"breakdown"`
	Topics     []TopicStat `json:"topics"`
	WeakTopics []string    `json:"weakTopics,omitempty"`
}

// BuildResult tallies s. Topics below weakThreshold accuracy are listed as
// weak; a non-positive threshold uses DefaultWeakThreshold.
func BuildResult(s *Session, weakThreshold float64) *Result {
	if weakThreshold <= 0 {
		weakThreshold = DefaultWeakThreshold
	}

	r := &Result{
		SessionID:  s.ID,
		UserID:     s.UserID,
		Mode:       s.Mode,
		ReviewOnly: s.ReviewOnly,
		Total:      len(s.Pool),
		Score:      s.Score,
		Logged:     len(s.Log),
		EndedEarly: s.endedEarly,
		FinishedAt: s.EndedAt,
		Breakdown:  append([]Entry(nil), s.Log...),
	}
	if !s.EndedAt.IsZero() {
		r.Duration = s.EndedAt.Sub(s.StartedAt)
	}

	perTopic := make(map[string]*TopicStat)
	var order []string
	for _, e := range s.Log {
		if e.Skipped() {
			continue
		}
		r.Answered++

		ts, ok := perTopic[e.Topic]
		if !ok {
			ts = &TopicStat{Topic: e.Topic}
			perTopic[e.Topic] = ts
			order = append(order, e.Topic)
		}
		ts.Answered++
		if e.Correct {
			ts.Correct++
		}
	}

	r.Skipped = r.Total - r.Answered
	r.Wrong = r.Answered - r.Score
	if r.Answered > 0 {
		r.Accuracy = float64(r.Score) / float64(r.Answered)
	}

	sort.Strings(order)
	for _, topic := range order {
		ts := perTopic[topic]
		ts.Accuracy = float64(ts.Correct) / float64(ts.Answered)
		r.Topics = append(r.Topics, *ts)
		if ts.Accuracy < weakThreshold && topic != "" {
			r.WeakTopics = append(r.WeakTopics, topic)
		}
	}

	return r
}
