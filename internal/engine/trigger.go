package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownTrigger   = errors.New("engine: unknown trigger")
	ErrMalformedTrigger = errors.New("engine: malformed trigger")
)

// Test modes.
const (
	ModeMini   = "mini"
	ModeFull   = "full"
	ModeReview = "review"
)

// Trigger is one user action. The set is closed: only the types in this
// file implement it.
type Trigger interface {
	Name() string
	trigger()
}

// StartSession begins a practice test. Mode is ModeMini (default) or
// ModeFull.
type StartSession struct {
	Mode string
}

// StartReview begins a test made only of previously missed questions.
type StartReview struct{}

// Answer picks Option for the question at Index.
type Answer struct {
	Index    int
	Option   int
	IssuedAt time.Time
}

// Skip passes on the question at Index.
type Skip struct {
	Index    int
	IssuedAt time.Time
}

// FinishEarly ends the test. A negative Index ends it whatever question
// is current.
type FinishEarly struct {
	Index    int
	IssuedAt time.Time
}

// SelectTopic sets the practice topic preference.
type SelectTopic struct {
	Topic string
}

// SelectLanguage sets the interface language.
type SelectLanguage struct {
	Language string
}

// ReportQuestion flags a question as wrong. A negative Index means the
// current question.
type ReportQuestion struct {
	Index int
	Note  string
}

func (StartSession) Name() string   { return "start" }
func (StartReview) Name() string    { return "review" }
func (Answer) Name() string         { return "answer" }
func (Skip) Name() string           { return "skip" }
func (FinishEarly) Name() string    { return "finish" }
func (SelectTopic) Name() string    { return "topic" }
func (SelectLanguage) Name() string { return "language" }
func (ReportQuestion) Name() string { return "report" }

func (StartSession) trigger()   {}
func (StartReview) trigger()    {}
func (Answer) trigger()         {}
func (Skip) trigger()           {}
func (FinishEarly) trigger()    {}
func (SelectTopic) trigger()    {}
func (SelectLanguage) trigger() {}
func (ReportQuestion) trigger() {}

// wireTrigger is the JSON form: {"type": "answer", "index": 2, "option": 1}.
type wireTrigger struct {
	Type     string    `json:"type"`
	Mode     string    `json:"mode,omitempty"`
	Index    *int      `json:"index,omitempty"`
	Option   *int      `json:"option,omitempty"`
	IssuedAt time.Time `json:"issuedAt,omitempty"`
	Topic    string    `json:"topic,omitempty"`
	Language string    `json:"language,omitempty"`
	Note     string    `json:"note,omitempty"`
}

// DecodeTrigger parses the JSON wire form of a trigger.
func DecodeTrigger(data []byte) (Trigger, error) {
	var w wireTrigger
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTrigger, err)
	}

	indexOr := func(fallback int) int {
		if w.Index == nil {
			return fallback
		}
		return *w.Index
	}

	switch strings.ToLower(w.Type) {
	case "start":
		return StartSession{Mode: w.Mode}, nil
	case "review":
		return StartReview{}, nil
	case "answer":
		if w.Index == nil || w.Option == nil {
			return nil, fmt.Errorf("%w: answer needs index and option", ErrMalformedTrigger)
		}
		return Answer{Index: *w.Index, Option: *w.Option, IssuedAt: w.IssuedAt}, nil
	case "skip":
		if w.Index == nil {
			return nil, fmt.Errorf("%w: skip needs index", ErrMalformedTrigger)
		}
		return Skip{Index: *w.Index, IssuedAt: w.IssuedAt}, nil
	case "finish":
		return FinishEarly{Index: indexOr(-1), IssuedAt: w.IssuedAt}, nil
	case "topic":
		return SelectTopic{Topic: w.Topic}, nil
	case "language":
		if w.Language == "" {
			return nil, fmt.Errorf("%w: language is empty", ErrMalformedTrigger)
		}
		return SelectLanguage{Language: w.Language}, nil
	case "report":
		return ReportQuestion{Index: indexOr(-1), Note: w.Note}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedTrigger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrigger, w.Type)
	}
}
