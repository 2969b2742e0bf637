// Package engine turns user triggers into session, profile and quota
// changes and presents the outcome through a notifier.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmentor/internal/coach"
	"github.com/abhisek/quizmentor/internal/config"
	"github.com/abhisek/quizmentor/internal/i18n"
	"github.com/abhisek/quizmentor/internal/notify"
	"github.com/abhisek/quizmentor/internal/operator"
	"github.com/abhisek/quizmentor/internal/pool"
	"github.com/abhisek/quizmentor/internal/profile"
	"github.com/abhisek/quizmentor/internal/question"
	"github.com/abhisek/quizmentor/internal/quota"
	"github.com/abhisek/quizmentor/internal/scoring"
	"github.com/abhisek/quizmentor/internal/session"
	"github.com/abhisek/quizmentor/internal/store"
)

// Settings are the tunables the engine reads.
type Settings struct {
	DailyFreeSessions int
	MiniTestSize      int
	FullTestSize      int
	StaleWindow       time.Duration
	WeakThreshold     float64
	Location          *time.Location

	PremiumUsers  []int64
	FreeTopics    []string
	FreeLanguages []string
	Languages     []string
}

// SettingsFrom copies the engine settings out of c.
func SettingsFrom(c *config.Config) Settings {
	return Settings{
		DailyFreeSessions: c.DailyFreeSessions,
		MiniTestSize:      c.MiniTestSize,
		FullTestSize:      c.FullTestSize,
		StaleWindow:       c.StaleWindow,
		WeakThreshold:     c.WeakThreshold,
		Location:          c.Location,
		PremiumUsers:      c.PremiumUsers,
		FreeTopics:        c.FreeTopics,
		FreeLanguages:     c.FreeLanguages,
		Languages:         c.Languages,
	}
}

func (s *Settings) applyDefaults() {
	d := config.Default()
	if s.DailyFreeSessions <= 0 {
		s.DailyFreeSessions = d.DailyFreeSessions
	}
	if s.MiniTestSize <= 0 {
		s.MiniTestSize = d.MiniTestSize
	}
	if s.FullTestSize <= 0 {
		s.FullTestSize = d.FullTestSize
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.FreeTopics == nil {
		s.FreeTopics = d.FreeTopics
	}
	if s.FreeLanguages == nil {
		s.FreeLanguages = d.FreeLanguages
	}
	if s.Languages == nil {
		s.Languages = d.Languages
	}
}

// Deps are the collaborators. Questions, Profiles, Sessions, Results,
// Notifier and Translator are required. Profiles is wrapped in a
// store.PendingProfiles unless it already is one; share that wrapper with
// the Translator so languages set during an outage are honoured.
type Deps struct {
	Questions  question.Source
	Profiles   profile.Repository
	Sessions   session.Repository
	Results    session.ResultRepository
	Notifier   notify.Notifier
	Translator i18n.Translator

	// Reporter receives persistence failures and question reports.
	// Nil logs them only.
	Reporter operator.Reporter

	// Coach adds a study tip to results. Nil disables tips.
	Coach *coach.Coach

	Log   logrus.FieldLogger
	Clock func() time.Time
	Rand  *rand.Rand
}

// Engine dispatches triggers. It is safe for concurrent use; triggers for
// one user are handled one at a time.
type Engine struct {
	d       Deps
	s       Settings
	limiter *quota.Limiter
	builder *pool.Builder
	locks   userLocks

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New checks deps and fills defaults.
func New(d Deps, s Settings) (*Engine, error) {
	var missing []string
	if d.Questions == nil {
		missing = append(missing, "Questions")
	}
	if d.Profiles == nil {
		missing = append(missing, "Profiles")
	}
	if d.Sessions == nil {
		missing = append(missing, "Sessions")
	}
	if d.Results == nil {
		missing = append(missing, "Results")
	}
	if d.Notifier == nil {
		missing = append(missing, "Notifier")
	}
	if d.Translator == nil {
		missing = append(missing, "Translator")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("engine: missing %s", strings.Join(missing, ", "))
	}

	d.Profiles = store.NewPendingProfiles(d.Profiles)
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Reporter == nil {
		d.Reporter = operator.LogReporter{Log: d.Log}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.applyDefaults()

	return &Engine{
		d:       d,
		s:       s,
		limiter: quota.New(s.DailyFreeSessions),
		builder: pool.NewBuilder(d.Rand),
		rng:     rand.New(rand.NewPCG(d.Rand.Uint64(), d.Rand.Uint64())),
	}, nil
}

// Handle applies t for userID. The error is non-nil only for failures
// that are not a named outcome, such as a profile that cannot be loaded.
func (e *Engine) Handle(ctx context.Context, userID int64, t Trigger) (Outcome, error) {
	return e.HandleWith(ctx, userID, t, nil)
}

// HandleWith is Handle followed by after, both under the user's lock.
// Transports that queue presentations per user drain the queue in after
// so that concurrent triggers never take each other's messages.
func (e *Engine) HandleWith(ctx context.Context, userID int64, t Trigger, after func(Outcome, error)) (Outcome, error) {
	if t == nil {
		return Outcome{}, fmt.Errorf("%w: nil", ErrUnknownTrigger)
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	out, err := e.handle(ctx, userID, t)
	if after != nil {
		after(out, err)
	}
	return out, err
}

func (e *Engine) handle(ctx context.Context, userID int64, t Trigger) (Outcome, error) {
	h := &handling{
		e:      e,
		userID: userID,
		now:    e.d.Clock(),
		log:    e.d.Log.WithFields(logrus.Fields{"user_id": userID, "trigger": t.Name()}),
	}
	h.today = profile.DayOf(h.now, e.s.Location)

	var (
		out Outcome
		err error
	)
	switch t := t.(type) {
	case StartSession:
		out, err = h.start(ctx, t.Mode)
	case StartReview:
		out, err = h.start(ctx, ModeReview)
	case Answer:
		out, err = h.step(ctx, t.Index, t.IssuedAt, func(s *session.Session) (session.Step, error) {
			return s.Answer(t.Index, t.Option, h.now)
		})
	case Skip:
		out, err = h.step(ctx, t.Index, t.IssuedAt, func(s *session.Session) (session.Step, error) {
			return s.Skip(t.Index, h.now)
		})
	case FinishEarly:
		out, err = h.finish(ctx, t)
	case SelectTopic:
		out, err = h.selectTopic(ctx, t.Topic)
	case SelectLanguage:
		out, err = h.selectLanguage(ctx, t.Language)
	case ReportQuestion:
		out, err = h.report(ctx, t)
	default:
		return Outcome{}, fmt.Errorf("%w: %T", ErrUnknownTrigger, t)
	}
	if err != nil {
		h.log.WithError(err).Error("trigger failed")
		return Outcome{}, err
	}
	out.PersistFailed = out.PersistFailed || h.persistFailed
	h.log.WithField("kind", out.Kind).Debug("trigger handled")
	return out, nil
}

// Progress is a read-only summary for a user.
type Progress struct {
	Profile        *profile.Profile `json:"profile"`
	Premium        bool             `json:"premium"`
	Latest         *session.Result  `json:"latest,omitempty"`
	FreeRemaining  int              `json:"freeRemaining"`
	NextFreeReset  profile.Day      `json:"nextFreeReset"`
	ActiveQuestion *int             `json:"activeQuestion,omitempty"`
}

// Progress loads the user's profile, latest result and quota state. It
// waits for any trigger the user has in flight.
func (e *Engine) Progress(ctx context.Context, userID int64) (*Progress, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	p, err := e.d.Profiles.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("engine: load profile %d: %w", userID, err)
	}
	today := profile.DayOf(e.d.Clock(), e.s.Location)
	out := &Progress{
		Profile:       p,
		Premium:       e.premium(p),
		FreeRemaining: e.limiter.Remaining(p, today),
		NextFreeReset: quota.NextReset(today),
	}
	if out.Premium {
		out.FreeRemaining = -1
	}
	r, ok, err := e.d.Results.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("engine: latest result %d: %w", userID, err)
	}
	if ok {
		out.Latest = r
	}
	s, ok, err := e.d.Sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("engine: session %d: %w", userID, err)
	}
	if ok && s.Active() {
		idx := s.CurrentIndex
		out.ActiveQuestion = &idx
	}
	return out, nil
}

func (e *Engine) premium(p *profile.Profile) bool {
	return p.Premium || slices.Contains(e.s.PremiumUsers, p.UserID)
}

func (e *Engine) motivation(ctx context.Context, userID int64, tier scoring.Tier) string {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return i18n.Motivation(ctx, e.d.Translator, userID, tier, e.rng)
}
