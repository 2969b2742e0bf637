package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmentor/internal/ui/theme"
)

// ProgressBar shows how far into a test the user is.
type ProgressBar struct {
	Done  int
	Total int
	Width int
}

// View renders "Q n/total" followed by the bar. An empty string is
// returned when there is no test.
func (p ProgressBar) View() string {
	if p.Total <= 0 {
		return ""
	}
	label := lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("Q %d/%d", min(p.Done+1, p.Total), p.Total)) + "  "

	barWidth := max(p.Width-lipgloss.Width(label), 4)
	filled := min(max(barWidth*p.Done/p.Total, 0), barWidth)

	return label +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
}
