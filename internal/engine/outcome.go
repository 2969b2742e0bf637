package engine

import (
	"fmt"

	"github.com/abhisek/quizmentor/internal/notify"
	"github.com/abhisek/quizmentor/internal/profile"
)

// Kind tags what a trigger led to.
type Kind int

const (
	KindQuestion Kind = iota + 1
	KindResult
	KindStale
	KindNoActiveSession
	KindEmptyPool
	KindQuotaExceeded
	KindLanguageSet
	KindLanguageLocked
	KindTopicSet
	KindTopicLocked
	KindReported
)

var kindNames = map[Kind]string{
	KindQuestion:        "question",
	KindResult:          "result",
	KindStale:           "stale",
	KindNoActiveSession: "no-active-session",
	KindEmptyPool:       "empty-pool",
	KindQuotaExceeded:   "quota-exceeded",
	KindLanguageSet:     "language-set",
	KindLanguageLocked:  "language-locked",
	KindTopicSet:        "topic-set",
	KindTopicLocked:     "topic-locked",
	KindReported:        "reported",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the handled result of a trigger. Named conditions such as a
// stale answer or an exhausted quota are outcomes, not errors.
type Outcome struct {
	Kind      Kind   `json:"kind"`
	SessionID string `json:"sessionId,omitempty"`

	// QuestionIndex is the question now awaiting an answer, for
	// KindQuestion and KindStale.
	QuestionIndex int `json:"questionIndex"`

	Result *notify.ResultView `json:"result,omitempty"`

	// Reset is when the quota frees up, for KindQuotaExceeded.
	Reset profile.Day `json:"reset,omitempty"`

	// PersistFailed is set when state changed in memory but could not be
	// saved. The change still stands for this process.
	PersistFailed bool `json:"persistFailed,omitempty"`
}
