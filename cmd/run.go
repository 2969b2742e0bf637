package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmentor/internal/coach"
	"github.com/abhisek/quizmentor/internal/engine"
	"github.com/abhisek/quizmentor/internal/i18n"
	"github.com/abhisek/quizmentor/internal/llm"
	"github.com/abhisek/quizmentor/internal/notify"
	"github.com/abhisek/quizmentor/internal/operator"
	"github.com/abhisek/quizmentor/internal/profile"
	"github.com/abhisek/quizmentor/internal/question"
	"github.com/abhisek/quizmentor/internal/session"
	"github.com/abhisek/quizmentor/internal/store"
)

// runtime is the wired engine and everything it talks to.
type runtime struct {
	engine     *engine.Engine
	outbox     *notify.Outbox
	renderer   *notify.Renderer
	translator i18n.Translator
	closers    []func() error

	// sharedSessions is set when active sessions live in the database
	// rather than in this process.
	sharedSessions bool
}

func (rt *runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// buildRuntime opens the store, loads the question bank and catalog, and
// wires the engine. extra notifiers receive every presentation alongside
// the outbox.
func buildRuntime(ctx context.Context, extra ...notify.Notifier) (*runtime, error) {
	rt := &runtime{}
	st, err := openStores(rt)
	if err != nil {
		return nil, err
	}
	rt.sharedSessions = st.shared
	profiles := store.NewPendingProfiles(st.profiles)

	bank, err := loadBank(cfg.QuestionsPath)
	if err != nil {
		rt.Close()
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"version":   bank.Version(),
		"questions": bank.Len(),
	}).Debug("question bank loaded")

	catalog, err := i18n.LoadCatalog()
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.translator = i18n.NewLocalizer(catalog, i18n.ProfileLanguage(profiles))
	rt.renderer = notify.NewRenderer(rt.translator)
	rt.outbox = notify.NewOutbox(rt.renderer, 0)

	reporters := []operator.Reporter{operator.LogReporter{Log: log}}
	if cfg.SES.Enabled() {
		ses, err := operator.NewSESReporter(ctx, cfg.SES.Region, cfg.SES.From, cfg.SES.To, log)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("operator email: %w", err)
		}
		reporters = append(reporters, ses)
	}

	provider, err := llm.New(ctx, llm.ConfigFromEnv(), log)
	if err != nil {
		log.WithError(err).Warn("LLM provider not configured, study tips disabled")
		provider = nil
	}

	rt.engine, err = engine.New(engine.Deps{
		Questions:  bank,
		Profiles:   profiles,
		Sessions:   st.sessions,
		Results:    st.results,
		Notifier:   notify.Multi(append([]notify.Notifier{rt.outbox}, extra...)...),
		Translator: rt.translator,
		Reporter:   operator.Multi(reporters...),
		Coach:      coach.New(provider, cfg.CoachTimeout, log),
		Log:        log,
	}, engine.SettingsFrom(cfg))
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

type stores struct {
	profiles profile.Repository
	sessions session.Repository
	results  session.ResultRepository

	// shared is true when other processes see the same sessions.
	shared bool
}

func openStores(rt *runtime) (stores, error) {
	switch driver := strings.ToLower(cfg.Store.Driver); driver {
	case "memory":
		return stores{
			profiles: store.NewMemoryProfileRepo(),
			sessions: session.NewMemoryRepository(),
			results:  session.NewMemoryResultRepository(),
		}, nil

	case "file":
		dir := cfg.Store.Dir
		if dir == "" {
			d, err := store.DefaultProfileDir()
			if err != nil {
				return stores{}, err
			}
			dir = d
		}
		repo, err := store.NewFileProfileRepo(dir)
		if err != nil {
			return stores{}, fmt.Errorf("open profile dir: %w", err)
		}
		return stores{
			profiles: repo,
			sessions: session.NewMemoryRepository(),
			results:  session.NewMemoryResultRepository(),
		}, nil

	default:
		dsn := cfg.Store.DSN
		if driver == "sqlite" {
			var err error
			if dsn == "" {
				dsn, err = store.DefaultDBPath()
			} else {
				err = store.EnsureDir(dsn)
			}
			if err != nil {
				return stores{}, fmt.Errorf("resolve DB path: %w", err)
			}
		}
		st, err := store.OpenDialect(driver, dsn)
		if err != nil {
			return stores{}, fmt.Errorf("open store: %w", err)
		}
		rt.closers = append(rt.closers, st.Close)
		log.WithField("dialect", st.Dialect()).Debug("store opened")
		return stores{
			profiles: st.Profiles(),
			sessions: st.Sessions(),
			results:  st.Results(),
			shared:   true,
		}, nil
	}
}

func loadBank(path string) (*question.Bank, error) {
	if path == "" {
		return question.LoadDefault()
	}
	return question.Load(path)
}
