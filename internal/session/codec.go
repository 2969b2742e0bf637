package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/quizmentor/internal/question"
)

type sessionJSON struct {
	ID           string              `json:"id"`
	UserID       int64               `json:"userId"`
	Pool         []question.Question `json:"pool"`
	CurrentIndex int                 `json:"currentIndex"`
	Score        int                 `json:"score"`
	Log          []Entry             `json:"log"`
	ReviewOnly   bool                `json:"reviewOnly,omitempty"`
	Mode         string              `json:"mode,omitempty"`
	StartedAt    time.Time           `json:"startedAt"`
	EndedAt      *time.Time          `json:"endedAt,omitempty"`
	State        string              `json:"state"`
	EndedEarly   bool                `json:"endedEarly,omitempty"`
}

// MarshalJSON encodes the session including its lifecycle state, so a
// durable repository can resume it in another process.
func (s *Session) MarshalJSON() ([]byte, error) {
	v := sessionJSON{
		ID:           s.ID,
		UserID:       s.UserID,
		Pool:         s.Pool,
		CurrentIndex: s.CurrentIndex,
		Score:        s.Score,
		Log:          s.Log,
		ReviewOnly:   s.ReviewOnly,
		Mode:         s.Mode,
		StartedAt:    s.StartedAt,
		State:        s.state.String(),
		EndedEarly:   s.endedEarly,
	}
	if !s.EndedAt.IsZero() {
		v.EndedAt = &s.EndedAt
	}
	return json.Marshal(v)
}

// UnmarshalJSON restores a session written by MarshalJSON and rejects
// records whose counters fall outside the pool.
func (s *Session) UnmarshalJSON(data []byte) error {
	var v sessionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	var st State
	switch v.State {
	case "idle":
		st = StateIdle
	case "in_progress":
		st = StateInProgress
	case "completed":
		st = StateCompleted
	default:
		return fmt.Errorf("session %s: unknown state %q", v.ID, v.State)
	}
	if v.CurrentIndex < 0 || v.CurrentIndex > len(v.Pool) {
		return fmt.Errorf("session %s: index %d outside pool of %d", v.ID, v.CurrentIndex, len(v.Pool))
	}
	if v.Score > len(v.Log) || len(v.Log) > len(v.Pool) {
		return fmt.Errorf("session %s: score %d, log %d, pool %d out of order", v.ID, v.Score, len(v.Log), len(v.Pool))
	}
	if st == StateInProgress && v.CurrentIndex == len(v.Pool) {
		return fmt.Errorf("session %s: in progress past the last question", v.ID)
	}

	*s = Session{
		ID:           v.ID,
		UserID:       v.UserID,
		Pool:         v.Pool,
		CurrentIndex: v.CurrentIndex,
		Score:        v.Score,
		Log:          v.Log,
		ReviewOnly:   v.ReviewOnly,
		Mode:         v.Mode,
		StartedAt:    v.StartedAt,
		Revision:     s.Revision,
		state:        st,
		endedEarly:   v.EndedEarly,
	}
	if v.EndedAt != nil {
		s.EndedAt = *v.EndedAt
	}
	if s.Log == nil {
		s.Log = make([]Entry, 0, len(s.Pool))
	}
	return nil
}
