package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizmentor/internal/question"
)

var (
	// ErrNoActiveSession is returned for any trigger on an idle or
	// completed session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrStaleInteraction is returned when a trigger references a question
	// other than the current one. The session is left untouched.
	ErrStaleInteraction = errors.New("stale interaction")

	// ErrEmptyPool is returned when a session would start with no questions.
	ErrEmptyPool = errors.New("empty question pool")
)

// State is the lifecycle phase of a session.
type State int

const (
	StateIdle State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Entry records one acted-upon question.
type Entry struct {
	QuestionIndex int    `json:"questionIndex"`
	QuestionID    string `json:"questionId"`
	Topic         string `json:"topic,omitempty"`

	// Chosen is nil when the question was skipped.
	Chosen  *int `json:"chosen"`
	Correct bool `json:"correct"`
}

// Skipped reports whether the entry records a skip.
func (e Entry) Skipped() bool {
	return e.Chosen == nil
}

// Options configure a new session.
type Options struct {
	// ReviewOnly sessions draw from the wrong-answer bank and leave
	// lifetime stats untouched.
	ReviewOnly bool

	// Mode labels the session for results ("mini", "full", "review").
	Mode string
}

// Session is one user's run through a fixed question pool.
type Session struct {
	// ID uniquely identifies the session.
	ID string

	// UserID owns the session.
	UserID int64

	// Pool is the fixed, ordered question list.
	Pool []question.Question

	// CurrentIndex points at the question awaiting an answer.
	CurrentIndex int

	// Score counts correct answers so far.
	Score int

	// Log holds one entry per answered or skipped question, in order.
	Log []Entry

	ReviewOnly bool
	Mode       string

	StartedAt time.Time
	EndedAt   time.Time

	// Revision is the storage revision the session was loaded at. Durable
	// repositories use it to reject writes from a stale copy.
	Revision int64

	state      State
	endedEarly bool
}

// Step reports the effect of an accepted trigger.
type Step struct {
	Entry     Entry
	Completed bool
}

// New starts a session over pool. The session begins InProgress at the
// first question.
func New(userID int64, pool []question.Question, opts Options, now time.Time) (*Session, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	return &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Pool:       pool,
		ReviewOnly: opts.ReviewOnly,
		Mode:       opts.Mode,
		StartedAt:  now,
		Log:        make([]Entry, 0, len(pool)),
		state:      StateInProgress,
	}, nil
}

// State returns the lifecycle phase.
func (s *Session) State() State {
	if s == nil {
		return StateIdle
	}
	return s.state
}

// Active reports whether the session accepts triggers.
func (s *Session) Active() bool {
	return s.State() == StateInProgress
}

// EndedEarly reports whether FinishEarly completed the session.
func (s *Session) EndedEarly() bool {
	return s.endedEarly
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (question.Question, int, bool) {
	if !s.Active() {
		return question.Question{}, 0, false
	}
	return s.Pool[s.CurrentIndex], s.CurrentIndex, true
}

// Total returns the pool size.
func (s *Session) Total() int {
	return len(s.Pool)
}

// Answer records option for the question at index.
func (s *Session) Answer(index, option int, now time.Time) (Step, error) {
	if err := s.check(index); err != nil {
		return Step{}, err
	}
	q := s.Pool[index]
	if !q.ValidOption(option) {
		return Step{}, ErrStaleInteraction
	}

	chosen := option
	e := Entry{
		QuestionIndex: index,
		QuestionID:    q.ID,
		Topic:         q.Topic,
		Chosen:        &chosen,
		Correct:       q.IsCorrect(option),
	}
	if e.Correct {
		s.Score++
	}
	return s.advance(e, now), nil
}

// Skip passes on the question at index.
func (s *Session) Skip(index int, now time.Time) (Step, error) {
	if err := s.check(index); err != nil {
		return Step{}, err
	}
	q := s.Pool[index]
	return s.advance(Entry{
		QuestionIndex: index,
		QuestionID:    q.ID,
		Topic:         q.Topic,
	}, now), nil
}

// FinishEarly completes the session at once. Questions not yet acted
// upon are left out of the log. A negative index skips the stale check.
func (s *Session) FinishEarly(index int, now time.Time) error {
	if !s.Active() {
		return ErrNoActiveSession
	}
	if index >= 0 && index != s.CurrentIndex {
		return ErrStaleInteraction
	}
	s.endedEarly = s.CurrentIndex < len(s.Pool)
	s.complete(now)
	return nil
}

func (s *Session) check(index int) error {
	if !s.Active() {
		return ErrNoActiveSession
	}
	if index != s.CurrentIndex {
		return ErrStaleInteraction
	}
	return nil
}

func (s *Session) advance(e Entry, now time.Time) Step {
	s.Log = append(s.Log, e)
	s.CurrentIndex++
	if s.CurrentIndex == len(s.Pool) {
		s.complete(now)
	}
	return Step{Entry: e, Completed: s.state == StateCompleted}
}

func (s *Session) complete(now time.Time) {
	s.state = StateCompleted
	s.EndedAt = now
}
