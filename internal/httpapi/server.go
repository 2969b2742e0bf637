// Package httpapi exposes the engine as a JSON webhook bridge.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmentor/internal/engine"
	"github.com/abhisek/quizmentor/internal/notify"
)

// maxBody caps a trigger payload.
const maxBody = 64 << 10

// Options configure the bridge. Engine and Outbox are required; the
// outbox must be the notifier the engine presents through.
type Options struct {
	Engine *engine.Engine
	Outbox *notify.Outbox
	Log    logrus.FieldLogger

	// JWTSecret enables bearer auth when non-empty.
	JWTSecret string
}

type server struct {
	eng *engine.Engine
	out *notify.Outbox
	log logrus.FieldLogger
}

// New returns the bridge router.
func New(o Options) http.Handler {
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	s := &server{eng: o.Engine, out: o.Outbox, log: o.Log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(o.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/users/{userID}", func(r chi.Router) {
		if o.JWTSecret != "" {
			r.Use(bearerAuth([]byte(o.JWTSecret), o.Log))
		}
		r.Post("/triggers", s.trigger)
		r.Get("/profile", s.profile)
		r.Get("/result", s.result)
	})
	return r
}

type triggerResponse struct {
	Outcome  engine.Outcome   `json:"outcome"`
	Messages []notify.Message `json:"messages"`
}

func (s *server) trigger(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	log := s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"request_id": middleware.GetReqID(r.Context()),
	})

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "body too large")
		return
	}
	t, err := engine.DecodeTrigger(body)
	switch {
	case errors.Is(err, engine.ErrUnknownTrigger):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var msgs []notify.Message
	out, err := s.eng.HandleWith(r.Context(), userID, t, func(engine.Outcome, error) {
		msgs = s.out.Drain(userID)
	})
	if err != nil {
		log.WithError(err).Error("trigger failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if msgs == nil {
		msgs = []notify.Message{}
	}
	writeJSON(w, http.StatusOK, triggerResponse{Outcome: out, Messages: msgs})
}

func (s *server) profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	p, err := s.eng.Progress(r.Context(), userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("progress failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) result(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	p, err := s.eng.Progress(r.Context(), userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("progress failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p.Latest == nil {
		writeError(w, http.StatusNotFound, "no completed session")
		return
	}
	writeJSON(w, http.StatusOK, p.Latest)
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
