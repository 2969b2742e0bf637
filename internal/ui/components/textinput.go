package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// ChatInput is the single-line message box under the transcript.
type ChatInput struct {
	Model textinput.Model
}

// NewChatInput returns a focused input with placeholder.
func NewChatInput(placeholder string, limit int) ChatInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return ChatInput{Model: ti}
}

func (c ChatInput) Init() tea.Cmd {
	return c.Model.Focus()
}

func (c ChatInput) Update(msg tea.Msg) (ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.Model, cmd = c.Model.Update(msg)
	return c, cmd
}

func (c ChatInput) View() string {
	return c.Model.View()
}

// Take returns the trimmed text and clears the box.
func (c *ChatInput) Take() string {
	v := strings.TrimSpace(c.Model.Value())
	c.Model.SetValue("")
	return v
}
