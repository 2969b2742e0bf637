package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizmentor/internal/engine"
)

var (
	errUnknownCommand = errors.New("unknown command, try /help")
	errUsage          = errors.New("usage")
)

type action int

const (
	actTrigger action = iota
	actWelcome
	actStats
	actHelp
	actQuit
)

// questionRef is the question the console last showed.
type questionRef struct {
	ok       bool
	index    int
	total    int
	issuedAt time.Time
}

// indexOr returns the shown index, or -1 when nothing is shown so the
// engine answers with the current question.
func (q questionRef) indexOr() int {
	if !q.ok {
		return -1
	}
	return q.index
}

type command struct {
	act     action
	trigger engine.Trigger
}

const helpText = `/practice [mini|full]  start a test
/review                retry questions you missed
a b c d                answer the current question
/skip  /finish         skip a question or end the test
/report [note]         flag the current question
/topic <name>          set the practice topic
/lang <en|kn|ur>       set the language
/stats                 lifetime stats
/quit                  leave`

// parseCommand maps one line of input to an action.
func parseCommand(line string, cur questionRef) (command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{}, fmt.Errorf("%w: type a command", errUsage)
	}

	if len(line) == 1 {
		c := line[0] | 0x20
		if c >= 'a' && c <= 'd' {
			return command{trigger: engine.Answer{
				Index:    cur.indexOr(),
				Option:   int(c - 'a'),
				IssuedAt: cur.issuedAt,
			}}, nil
		}
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "/start":
		return command{act: actWelcome}, nil
	case "/practice":
		mode := strings.ToLower(arg)
		if mode != "" && mode != engine.ModeMini && mode != engine.ModeFull {
			return command{}, fmt.Errorf("%w: /practice [mini|full]", errUsage)
		}
		return command{trigger: engine.StartSession{Mode: mode}}, nil
	case "/review":
		return command{trigger: engine.StartReview{}}, nil
	case "/skip":
		return command{trigger: engine.Skip{Index: cur.indexOr(), IssuedAt: cur.issuedAt}}, nil
	case "/finish":
		return command{trigger: engine.FinishEarly{Index: cur.indexOr(), IssuedAt: cur.issuedAt}}, nil
	case "/report":
		return command{trigger: engine.ReportQuestion{Index: cur.indexOr(), Note: arg}}, nil
	case "/topic":
		return command{trigger: engine.SelectTopic{Topic: arg}}, nil
	case "/lang", "/language":
		if arg == "" {
			return command{}, fmt.Errorf("%w: /lang <en|kn|ur>", errUsage)
		}
		return command{trigger: engine.SelectLanguage{Language: arg}}, nil
	case "/stats", "/progress":
		return command{act: actStats}, nil
	case "/help":
		return command{act: actHelp}, nil
	case "/quit", "/exit":
		return command{act: actQuit}, nil
	}
	return command{}, errUnknownCommand
}
