package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// ErrorOverlay displays an error box on top of the view
type ErrorOverlay struct {
	Title   string
	Message string
	Width   int
	Theme   theme.Theme
}

// NewErrorOverlay creates a new error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{Theme: th, Width: 60}
}

// Show sets the error to display
func (e *ErrorOverlay) Show(title, message string) {
	e.Title = title
	e.Message = message
}

// View renders the overlay
func (e *ErrorOverlay) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(e.Theme.Error)

	messageStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Foreground).
		Width(max(e.Width-6, 20))

	hintStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Muted).
		Italic(true)

	content := titleStyle.Render(e.Title) + "\n\n" +
		messageStyle.Render(e.Message) + "\n\n" +
		hintStyle.Render("Press Esc or Enter to dismiss")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(e.Width).
		Render(content)
}
