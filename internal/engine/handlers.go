package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

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

// maxSaveAttempts bounds reload-and-reapply after a revision conflict.
const maxSaveAttempts = 3

var languageNames = map[string]string{
	"en": "English",
	"kn": "Kannada",
	"ur": "Urdu",
}

// handling is the state of one Handle call.
type handling struct {
	e      *Engine
	userID int64
	now    time.Time
	today  profile.Day
	log    logrus.FieldLogger

	persistFailed bool
}

// mutate loads the profile, applies fn and saves when anything changed.
// A revision conflict reloads the profile and applies fn again, so fn must
// only depend on the profile it is given. Save failures are reported, not
// returned.
func (h *handling) mutate(ctx context.Context, fn func(p *profile.Profile) bool) (*profile.Profile, error) {
	for attempt := 1; ; attempt++ {
		p, err := h.e.d.Profiles.Load(ctx, h.userID)
		if err != nil {
			return nil, fmt.Errorf("engine: load profile %d: %w", h.userID, err)
		}

		changed := false
		if p.JoinedOn.IsZero() {
			p.JoinedOn = h.today
			changed = true
		}
		if fn(p) {
			changed = true
		}
		if !changed {
			return p, nil
		}

		err = h.e.d.Profiles.Save(ctx, p)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, store.ErrRevisionConflict) && attempt < maxSaveAttempts {
			h.log.WithField("attempt", attempt).Debug("profile changed underneath, retrying")
			continue
		}
		h.persistFailure(ctx, "profile save failed", err, "")
		return p, nil
	}
}

func (h *handling) persistFailure(ctx context.Context, detail string, err error, sessionID string) {
	h.persistFailed = true
	h.log.WithError(err).WithField("session_id", sessionID).Error(detail)

	in := operator.NewIncident(operator.KindPersistence, h.userID, detail, h.now)
	in.SessionID = sessionID
	in.Err = err
	if rerr := h.e.d.Reporter.Report(ctx, in); rerr != nil {
		h.log.WithError(rerr).Warn("operator report failed")
	}
}

func (h *handling) notice(ctx context.Context, key string, args map[string]string) {
	n := notify.Notice{UserID: h.userID, Key: key, Args: args}
	if err := h.e.d.Notifier.PresentNotice(ctx, n); err != nil {
		h.log.WithError(err).WithField("key", key).Warn("present notice failed")
	}
}

func (h *handling) presentQuestion(ctx context.Context, s *session.Session) {
	q, idx, ok := s.Current()
	if !ok {
		return
	}
	v := notify.QuestionView{
		UserID:     h.userID,
		SessionID:  s.ID,
		Index:      idx,
		Total:      s.Total(),
		Question:   q,
		ReviewOnly: s.ReviewOnly,
		IssuedAt:   h.now,
	}
	if err := h.e.d.Notifier.PresentQuestion(ctx, v); err != nil {
		h.log.WithError(err).Warn("present question failed")
	}
}

func (h *handling) active(ctx context.Context) (*session.Session, bool, error) {
	s, ok, err := h.e.d.Sessions.Get(ctx, h.userID)
	if err != nil {
		return nil, false, fmt.Errorf("engine: load session %d: %w", h.userID, err)
	}
	if !ok || !s.Active() {
		return nil, false, nil
	}
	return s, true, nil
}

func (h *handling) noSession(ctx context.Context) Outcome {
	h.notice(ctx, "notice.no_session", nil)
	return Outcome{Kind: KindNoActiveSession}
}

// stale rejects the trigger and shows the current question again.
func (h *handling) stale(ctx context.Context, s *session.Session) Outcome {
	h.log.WithField("session_id", s.ID).Debug("stale trigger ignored")
	h.notice(ctx, "notice.stale", nil)
	h.presentQuestion(ctx, s)
	return Outcome{Kind: KindStale, SessionID: s.ID, QuestionIndex: s.CurrentIndex}
}

func (h *handling) start(ctx context.Context, mode string) (Outcome, error) {
	review := mode == ModeReview
	if !review && mode != ModeFull {
		mode = ModeMini
	}
	size := h.e.s.MiniTestSize
	if mode == ModeFull {
		size = h.e.s.FullTestSize
	}

	var (
		out  Outcome
		sess *session.Session
	)
	p, err := h.mutate(ctx, func(p *profile.Profile) bool {
		out, sess = Outcome{}, nil
		premium := h.e.premium(p)

		if mode == ModeFull && !premium {
			out.Kind = KindTopicLocked
			return false
		}
		if !premium && !h.e.limiter.CanStartFreeSession(p, h.today) {
			out = Outcome{Kind: KindQuotaExceeded, Reset: quota.NextReset(h.today)}
			return false
		}

		req := pool.RequestFor(p, size)
		req.Premium = premium
		var qs []question.Question
		if review {
			qs = h.e.builder.BuildReview(h.e.d.Questions.All(), req)
		} else {
			qs = h.e.builder.Build(h.e.d.Questions.All(), req)
		}
		s, err := session.New(h.userID, qs, session.Options{ReviewOnly: review, Mode: mode}, h.now)
		if err != nil {
			out.Kind = KindEmptyPool
			return false
		}
		if !premium {
			h.e.limiter.RecordFreeSessionStart(p, h.today)
		}
		sess = s
		return !premium
	})
	if err != nil {
		return Outcome{}, err
	}

	switch out.Kind {
	case KindTopicLocked:
		h.notice(ctx, "notice.mode_locked", nil)
		return out, nil
	case KindQuotaExceeded:
		h.log.Info("daily quota exhausted")
		h.notice(ctx, "notice.quota", map[string]string{"reset": out.Reset.String()})
		return out, nil
	case KindEmptyPool:
		key := "notice.empty_pool"
		if review {
			key = "notice.review_empty"
		}
		h.notice(ctx, key, map[string]string{"topic": p.TopicPreference})
		return out, nil
	}

	if err := h.e.d.Sessions.Put(ctx, sess); err != nil {
		h.persistFailure(ctx, "session save failed", err, sess.ID)
	}
	h.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"mode":       mode,
		"questions":  sess.Total(),
	}).Info("session started")

	h.presentQuestion(ctx, sess)
	return Outcome{Kind: KindQuestion, SessionID: sess.ID, QuestionIndex: sess.CurrentIndex}, nil
}

func (h *handling) step(ctx context.Context, index int, issued time.Time, apply func(*session.Session) (session.Step, error)) (Outcome, error) {
	s, ok, err := h.active(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return h.noSession(ctx), nil
	}
	if session.IsStale(issued, h.now, h.e.s.StaleWindow) {
		return h.stale(ctx, s), nil
	}

	st, err := apply(s)
	switch {
	case errors.Is(err, session.ErrStaleInteraction):
		return h.stale(ctx, s), nil
	case errors.Is(err, session.ErrNoActiveSession):
		return h.noSession(ctx), nil
	case err != nil:
		return Outcome{}, err
	}
	h.log.WithFields(logrus.Fields{
		"session_id":  s.ID,
		"index":       index,
		"question_id": st.Entry.QuestionID,
		"correct":     st.Entry.Correct,
		"skipped":     st.Entry.Skipped(),
	}).Debug("question logged")

	if !h.saveSession(ctx, s) {
		return h.overtaken(ctx)
	}
	if st.Completed {
		return h.complete(ctx, s), nil
	}
	h.presentQuestion(ctx, s)
	return Outcome{Kind: KindQuestion, SessionID: s.ID, QuestionIndex: s.CurrentIndex}, nil
}

func (h *handling) finish(ctx context.Context, t FinishEarly) (Outcome, error) {
	s, ok, err := h.active(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return h.noSession(ctx), nil
	}
	if session.IsStale(t.IssuedAt, h.now, h.e.s.StaleWindow) {
		return h.stale(ctx, s), nil
	}
	switch err := s.FinishEarly(t.Index, h.now); {
	case errors.Is(err, session.ErrStaleInteraction):
		return h.stale(ctx, s), nil
	case err != nil:
		return Outcome{}, err
	}
	if !h.saveSession(ctx, s) {
		return h.overtaken(ctx)
	}
	return h.complete(ctx, s), nil
}

// saveSession writes s back. It returns false when another process moved
// the session on first; the caller must then drop its copy. Other
// failures are reported and the in-memory session carries on.
func (h *handling) saveSession(ctx context.Context, s *session.Session) bool {
	err := h.e.d.Sessions.Put(ctx, s)
	switch {
	case err == nil:
		return true
	case errors.Is(err, store.ErrRevisionConflict):
		h.log.WithField("session_id", s.ID).Info("session advanced elsewhere, trigger dropped")
		return false
	default:
		h.persistFailure(ctx, "session save failed", err, s.ID)
		return true
	}
}

// overtaken answers a trigger that lost the race for the session by
// showing whatever is current now.
func (h *handling) overtaken(ctx context.Context) (Outcome, error) {
	cur, ok, err := h.active(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return h.noSession(ctx), nil
	}
	return h.stale(ctx, cur), nil
}

// complete folds a finished session into the profile, stores the result
// and presents it. Storage failures are reported and the result is still
// shown.
func (h *handling) complete(ctx context.Context, s *session.Session) Outcome {
	r := session.BuildResult(s, h.e.s.WeakThreshold)
	tier := scoring.SessionTier(s)

	p, err := h.mutate(ctx, func(p *profile.Profile) bool {
		finalized := scoring.Finalize(p, s, h.today)
		banked := scoring.UpdateWrongBank(p, s)
		return finalized || banked
	})
	if err != nil {
		h.persistFailure(ctx, "profile unavailable at session end", err, s.ID)
	}
	if err := h.e.d.Results.Save(ctx, r); err != nil {
		h.persistFailure(ctx, "result save failed", err, s.ID)
	}
	if err := h.e.d.Sessions.Delete(ctx, s); err != nil {
		h.persistFailure(ctx, "session delete failed", err, s.ID)
	}

	lang := profile.DefaultLanguage
	view := notify.ResultView{
		Result:     *r,
		Tier:       tier,
		Motivation: h.e.motivation(ctx, h.userID, tier),
	}
	if p != nil {
		lang = p.Language
		view.Streak = p.Streak
		view.BestScore = p.BestScore
		view.NextMilestone = scoring.NextStreakMilestone(p.Streak)
	}
	view.Tip = h.e.d.Coach.Tip(ctx, r, lang)

	h.log.WithFields(logrus.Fields{
		"session_id":  s.ID,
		"score":       r.Score,
		"total":       r.Total,
		"tier":        tier,
		"ended_early": r.EndedEarly,
	}).Info("session completed")

	if err := h.e.d.Notifier.PresentResult(ctx, view); err != nil {
		h.log.WithError(err).Warn("present result failed")
	}
	if h.persistFailed {
		h.notice(ctx, "notice.save_failed", nil)
	}
	return Outcome{Kind: KindResult, SessionID: s.ID, QuestionIndex: s.CurrentIndex, Result: &view}
}

func (h *handling) selectTopic(ctx context.Context, topic string) (Outcome, error) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		topic = profile.TopicMixed
	}

	var locked bool
	if _, err := h.mutate(ctx, func(p *profile.Profile) bool {
		locked = !h.e.premium(p) && !slices.Contains(h.e.s.FreeTopics, topic)
		if locked || p.TopicPreference == topic {
			return false
		}
		p.TopicPreference = topic
		return true
	}); err != nil {
		return Outcome{}, err
	}

	if locked {
		h.notice(ctx, "notice.topic_locked", map[string]string{"topic": topic})
		return Outcome{Kind: KindTopicLocked}, nil
	}
	h.notice(ctx, "notice.topic_set", map[string]string{"topic": topic})
	return Outcome{Kind: KindTopicSet}, nil
}

func (h *handling) selectLanguage(ctx context.Context, lang string) (Outcome, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	supported := slices.Contains(h.e.s.Languages, lang)

	var locked bool
	if _, err := h.mutate(ctx, func(p *profile.Profile) bool {
		locked = !supported || (!h.e.premium(p) && !slices.Contains(h.e.s.FreeLanguages, lang))
		if locked || p.Language == lang {
			return false
		}
		p.Language = lang
		return true
	}); err != nil {
		return Outcome{}, err
	}

	if locked {
		name, ok := languageNames[lang]
		if !ok {
			name = lang
		}
		h.notice(ctx, "notice.language_locked", map[string]string{"language": name})
		return Outcome{Kind: KindLanguageLocked}, nil
	}
	h.notice(ctx, "notice.language_set", nil)
	return Outcome{Kind: KindLanguageSet}, nil
}

func (h *handling) report(ctx context.Context, t ReportQuestion) (Outcome, error) {
	s, ok, err := h.active(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return h.noSession(ctx), nil
	}
	idx := t.Index
	if idx < 0 {
		idx = s.CurrentIndex
	}
	if idx > s.CurrentIndex || idx >= len(s.Pool) {
		return h.stale(ctx, s), nil
	}

	q := s.Pool[idx]
	var detail strings.Builder
	fmt.Fprintf(&detail, "Question %s reported by user.\nPrompt: %s\nAnswer key: %s", q.ID, q.Prompt, q.Options[q.CorrectIndex])
	if note := strings.TrimSpace(t.Note); note != "" {
		fmt.Fprintf(&detail, "\nNote: %s", note)
	}
	in := operator.NewIncident(operator.KindQuestionReport, h.userID, detail.String(), h.now)
	in.SessionID = s.ID
	in.QuestionID = q.ID
	if err := h.e.d.Reporter.Report(ctx, in); err != nil {
		h.log.WithError(err).Warn("question report not delivered")
	}

	h.notice(ctx, "notice.reported", nil)
	return Outcome{Kind: KindReported, SessionID: s.ID, QuestionIndex: s.CurrentIndex}, nil
}
