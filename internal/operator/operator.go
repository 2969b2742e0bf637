// Package operator forwards incidents that need a human to look at them.
package operator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kind names what happened.
type Kind string

const (
	KindPersistence    Kind = "persistence-failure"
	KindQuestionReport Kind = "question-report"
)

// Incident is one report.
type Incident struct {
	ID         string
	Kind       Kind
	UserID     int64
	SessionID  string
	QuestionID string
	Detail     string
	Err        error
	At         time.Time
}

// NewIncident stamps an ID and time on an incident.
func NewIncident(kind Kind, userID int64, detail string, now time.Time) Incident {
	return Incident{ID: uuid.NewString(), Kind: kind, UserID: userID, Detail: detail, At: now}
}

// Subject is a one-line summary.
func (i Incident) Subject() string {
	return fmt.Sprintf("[quizmentor] %s for user %d", i.Kind, i.UserID)
}

// Body is a plain-text description.
func (i Incident) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Incident: %s\n", i.ID)
	fmt.Fprintf(&b, "Kind:     %s\n", i.Kind)
	fmt.Fprintf(&b, "User:     %d\n", i.UserID)
	if i.SessionID != "" {
		fmt.Fprintf(&b, "Session:  %s\n", i.SessionID)
	}
	if i.QuestionID != "" {
		fmt.Fprintf(&b, "Question: %s\n", i.QuestionID)
	}
	fmt.Fprintf(&b, "At:       %s\n", i.At.UTC().Format(time.RFC3339))
	if i.Detail != "" {
		fmt.Fprintf(&b, "\n%s\n", i.Detail)
	}
	if i.Err != nil {
		fmt.Fprintf(&b, "\nError: %v\n", i.Err)
	}
	return b.String()
}

// Reporter delivers incidents.
type Reporter interface {
	Report(ctx context.Context, in Incident) error
}

// LogReporter writes incidents to the log at warning level.
type LogReporter struct {
	Log logrus.FieldLogger
}

func (r LogReporter) Report(_ context.Context, in Incident) error {
	entry := r.Log.WithFields(logrus.Fields{
		"incident":    in.ID,
		"kind":        in.Kind,
		"user_id":     in.UserID,
		"session_id":  in.SessionID,
		"question_id": in.QuestionID,
	})
	if in.Err != nil {
		entry = entry.WithError(in.Err)
	}
	entry.Warn(in.Detail)
	return nil
}

type multi []Reporter

// Multi sends every incident to each reporter and joins their errors.
func Multi(rs ...Reporter) Reporter {
	var out multi
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multi) Report(ctx context.Context, in Incident) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, in); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps incidents in memory.
type Recorder struct {
	mu        sync.Mutex
	incidents []Incident
}

func (r *Recorder) Report(_ context.Context, in Incident) error {
	r.mu.Lock()
	r.incidents = append(r.incidents, in)
	r.mu.Unlock()
	return nil
}

// Incidents returns a copy of what was reported.
func (r *Recorder) Incidents() []Incident {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Incident(nil), r.incidents...)
}
