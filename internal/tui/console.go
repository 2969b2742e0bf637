// Package tui is a terminal chat console over the engine.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizmentor/internal/engine"
	"github.com/abhisek/quizmentor/internal/i18n"
	"github.com/abhisek/quizmentor/internal/notify"
	"github.com/abhisek/quizmentor/internal/ui/components"
	"github.com/abhisek/quizmentor/internal/ui/layout"
	"github.com/abhisek/quizmentor/internal/ui/theme"
)

// maxTranscript bounds the kept transcript entries.
const maxTranscript = 200

type speaker int

const (
	fromBot speaker = iota
	fromUser
	fromNotice
	fromResult
	fromError
)

type entry struct {
	who  speaker
	text string
}

type handledMsg struct {
	outcome  engine.Outcome
	messages []notify.Message
	err      error
}

type statusMsg struct {
	progress *engine.Progress
	err      error
}

// Options wire the console. The outbox must be the engine's notifier.
type Options struct {
	Engine     *engine.Engine
	Outbox     *notify.Outbox
	Renderer   *notify.Renderer
	Translator i18n.Translator
	UserID     int64
	Log        logrus.FieldLogger
}

// Console is the root Bubble Tea model.
type Console struct {
	o     Options
	input components.ChatInput

	transcript []entry
	cur        questionRef
	status     layout.Status
	busy       bool

	width  int
	height int
}

// New returns a console greeting the user.
func New(o Options) *Console {
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	c := &Console{
		o:      o,
		input:  components.NewChatInput("a–d to answer, /help for commands", 280),
		status: layout.Status{FreeRemaining: -1},
	}
	c.add(fromBot, c.o.Translator.Text(context.Background(), o.UserID, "welcome"))
	return c
}

func (c *Console) Init() tea.Cmd {
	return tea.Batch(c.input.Init(), c.refresh())
}

func (c *Console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width, c.height = msg.Width, msg.Height
		return c, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return c, tea.Quit
		case "enter":
			return c, c.submit()
		}

	case handledMsg:
		c.busy = false
		c.handled(msg)
		return c, c.refresh()

	case statusMsg:
		if msg.err != nil {
			c.o.Log.WithError(msg.err).Warn("progress refresh failed")
			return c, nil
		}
		c.status.Streak = msg.progress.Profile.Streak
		c.status.FreeRemaining = msg.progress.FreeRemaining
		return c, nil
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *Console) submit() tea.Cmd {
	if c.busy {
		return nil
	}
	line := c.input.Take()
	if line == "" {
		return nil
	}
	c.add(fromUser, line)

	cmd, err := parseCommand(line, c.cur)
	if err != nil {
		c.add(fromError, err.Error())
		return nil
	}

	ctx := context.Background()
	switch cmd.act {
	case actQuit:
		return tea.Quit
	case actHelp:
		c.add(fromNotice, helpText)
		return nil
	case actWelcome:
		c.add(fromBot, c.o.Translator.Text(ctx, c.o.UserID, "welcome"))
		return nil
	case actStats:
		p, err := c.o.Engine.Progress(ctx, c.o.UserID)
		if err != nil {
			c.add(fromError, err.Error())
			return nil
		}
		c.add(fromBot, c.o.Renderer.Progress(ctx, p.Profile).Text)
		return nil
	}

	c.busy = true
	eng, out, uid, t := c.o.Engine, c.o.Outbox, c.o.UserID, cmd.trigger
	return func() tea.Msg {
		var msgs []notify.Message
		o, err := eng.HandleWith(context.Background(), uid, t, func(engine.Outcome, error) {
			msgs = out.Drain(uid)
		})
		return handledMsg{outcome: o, messages: msgs, err: err}
	}
}

func (c *Console) handled(msg handledMsg) {
	if msg.err != nil {
		c.add(fromError, "Something went wrong: "+msg.err.Error())
		return
	}
	for _, m := range msg.messages {
		switch m.Kind {
		case notify.MessageQuestion:
			c.cur = questionRef{ok: true, total: m.Total, issuedAt: m.IssuedAt}
			if m.QuestionIndex != nil {
				c.cur.index = *m.QuestionIndex
			}
			c.add(fromBot, m.Text)
		case notify.MessageResult:
			c.cur = questionRef{}
			c.add(fromResult, m.Text)
		default:
			c.add(fromNotice, m.Text)
		}
	}
	if msg.outcome.Kind == engine.KindNoActiveSession {
		c.cur = questionRef{}
	}
}

func (c *Console) refresh() tea.Cmd {
	eng, uid := c.o.Engine, c.o.UserID
	return func() tea.Msg {
		p, err := eng.Progress(context.Background(), uid)
		return statusMsg{progress: p, err: err}
	}
}

func (c *Console) add(who speaker, text string) {
	c.transcript = append(c.transcript, entry{who: who, text: text})
	if n := len(c.transcript); n > maxTranscript {
		c.transcript = c.transcript[n-maxTranscript:]
	}
}

func (c *Console) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(c.render())
	return v
}

func (c *Console) render() string {
	if c.width == 0 || c.height == 0 {
		return ""
	}
	if layout.IsTooSmall(c.width, c.height) {
		return layout.RenderMinSizeMessage(c.width, c.height)
	}

	header := layout.RenderHeader(c.title(), c.status, c.width)
	footer := layout.RenderFooter([]layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "/help", Description: "Commands"},
		{Key: "Ctrl+C", Description: "Quit"},
	}, c.width)

	bottom := c.input.View()
	if c.busy {
		bottom = theme.Hint.Render("…") + "\n" + bottom
	}
	if c.cur.ok {
		bar := components.ProgressBar{Done: c.cur.index, Total: c.cur.total, Width: c.width - 2}
		bottom = bar.View() + "\n" + bottom
	}

	room := c.height - lipgloss.Height(header) - lipgloss.Height(footer) - lipgloss.Height(bottom) - 1
	body := layout.TailLines(c.renderTranscript(c.width-2), room) + "\n" + bottom
	return layout.RenderFrame(header, body, footer, c.width, c.height)
}

func (c *Console) title() string {
	if c.cur.ok {
		return fmt.Sprintf("Test in progress · %d/%d", c.cur.index+1, c.cur.total)
	}
	return "Practice"
}

func (c *Console) renderTranscript(width int) string {
	bubble := min(width, 76)
	parts := make([]string, 0, len(c.transcript))
	for _, e := range c.transcript {
		switch e.who {
		case fromUser:
			parts = append(parts, lipgloss.PlaceHorizontal(width, lipgloss.Right, theme.UserBubble.Render(e.text)))
		case fromNotice:
			parts = append(parts, theme.NoticeBubble.Width(bubble).Render(e.text))
		case fromResult:
			parts = append(parts, theme.ResultBubble.Width(bubble).Render(e.text))
		case fromError:
			parts = append(parts, theme.ErrorLine.Render("✗ "+e.text))
		default:
			parts = append(parts, theme.BotBubble.Width(bubble).Render(e.text))
		}
	}
	return strings.Join(parts, "\n")
}

// Run starts the console and blocks until the user quits.
func Run(c *Console) error {
	_, err := tea.NewProgram(c).Run()
	return err
}
