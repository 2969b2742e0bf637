package components

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Empty(t, ProgressBar{}.View())

	v := ProgressBar{Done: 2, Total: 5, Width: 30}.View()
	assert.Contains(t, v, "Q 3/5")
	assert.Equal(t, 30, lipgloss.Width(v))

	v = ProgressBar{Done: 5, Total: 5, Width: 30}.View()
	assert.Contains(t, v, "Q 5/5")
}

func TestChatInputTake(t *testing.T) {
	c := NewChatInput("say something", 100)
	c.Model.SetValue("  /practice full ")
	assert.Equal(t, "/practice full", c.Take())
	assert.Empty(t, c.Model.Value())
}
