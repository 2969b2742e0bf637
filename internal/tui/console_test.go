package tui

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmentor/internal/engine"
	"github.com/abhisek/quizmentor/internal/i18n"
	"github.com/abhisek/quizmentor/internal/logging"
	"github.com/abhisek/quizmentor/internal/notify"
	"github.com/abhisek/quizmentor/internal/question"
	"github.com/abhisek/quizmentor/internal/session"
	"github.com/abhisek/quizmentor/internal/store"
)

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	qs := make([]question.Question, 6)
	for i := range qs {
		qs[i] = question.Question{
			ID:           fmt.Sprintf("q%d", i),
			Prompt:       fmt.Sprintf("prompt %d", i),
			Options:      []string{"w", "x", "y", "z"},
			CorrectIndex: 2,
			Topic:        "vocabulary",
		}
	}
	profiles := store.NewMemoryProfileRepo()
	tr := i18n.NewLocalizer(i18n.MustLoadCatalog(), i18n.ProfileLanguage(profiles))
	render := notify.NewRenderer(tr)
	out := notify.NewOutbox(render, 0)

	eng, err := engine.New(engine.Deps{
		Questions:  question.New("v1.0.0", nil, qs),
		Profiles:   profiles,
		Sessions:   session.NewMemoryRepository(),
		Results:    session.NewMemoryResultRepository(),
		Notifier:   out,
		Translator: tr,
		Log:        logging.Discard(),
		Clock:      func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) },
		Rand:       rand.New(rand.NewPCG(3, 4)),
	}, engine.Settings{})
	require.NoError(t, err)

	return New(Options{
		Engine:     eng,
		Outbox:     out,
		Renderer:   render,
		Translator: tr,
		UserID:     9,
		Log:        logging.Discard(),
	})
}

// send types line and presses enter, then feeds any engine reply back.
func send(t *testing.T, c *Console, line string) {
	t.Helper()
	c.input.Model.SetValue(line)
	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(handledMsg); ok {
		_, refresh := c.Update(msg)
		require.NotNil(t, refresh)
		c.Update(refresh())
	}
}

func last(c *Console) entry {
	return c.transcript[len(c.transcript)-1]
}

func TestConsoleWelcome(t *testing.T) {
	c := newTestConsole(t)
	require.Len(t, c.transcript, 1)
	assert.Contains(t, c.transcript[0].text, "/practice")
}

func TestConsolePlaysATest(t *testing.T) {
	c := newTestConsole(t)

	send(t, c, "/practice")
	require.True(t, c.cur.ok)
	assert.Equal(t, 0, c.cur.index)
	assert.Equal(t, 5, c.cur.total)
	assert.Equal(t, fromBot, last(c).who)
	assert.Contains(t, last(c).text, "Question 1 of 5")
	assert.Equal(t, 0, c.status.FreeRemaining)

	for i := 0; i < 4; i++ {
		send(t, c, "c")
		assert.Equal(t, i+1, c.cur.index)
	}
	send(t, c, "/skip")

	assert.False(t, c.cur.ok)
	assert.Equal(t, fromResult, last(c).who)
	assert.Contains(t, last(c).text, "Score: 4 out of 5")
	assert.Equal(t, 1, c.status.Streak)

	send(t, c, "/stats")
	assert.Contains(t, last(c).text, "Tests completed: 1")

	send(t, c, "/practice")
	assert.Equal(t, fromNotice, last(c).who)
	assert.Contains(t, last(c).text, "free test")
}

func TestConsoleLocalErrors(t *testing.T) {
	c := newTestConsole(t)

	send(t, c, "hello")
	assert.Equal(t, fromError, last(c).who)

	send(t, c, "/help")
	assert.Equal(t, fromNotice, last(c).who)
	assert.Contains(t, last(c).text, "/practice")

	send(t, c, "b")
	assert.Equal(t, fromNotice, last(c).who)
	assert.Contains(t, last(c).text, "No test in progress")
}

func TestConsoleQuit(t *testing.T) {
	c := newTestConsole(t)
	c.input.Model.SetValue("/quit")
	_, cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestConsoleView(t *testing.T) {
	c := newTestConsole(t)
	assert.Empty(t, c.render())

	c.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, c.render(), "Terminal too small")

	c.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	send(t, c, "/practice")
	view := c.render()
	assert.Contains(t, view, "QuizMentor")
	assert.Contains(t, view, "Q 1/5")
}
