package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Group is a titled list of key bindings
type Group struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"r, F5", "Reload table"},
		{"Ctrl+L", "Drop cached pages"},
	}
}

// GetNavigationKeys returns list navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"PgUp/PgDn", "Move one screen"},
		{"g/Home", "First row"},
		{"G/End", "Last row"},
		{"y", "Copy row"},
	}
}

// GetSearchKeys returns search key bindings
func GetSearchKeys() []KeyBinding {
	return []KeyBinding{
		{"/", "Search"},
		{"field:value", "Search one field"},
		{"\"a b\"", "Search a phrase"},
		{"Enter", "Keep results, browse them"},
		{"Esc", "End search"},
	}
}

// Groups returns every key binding group in display order
func Groups() []Group {
	return []Group{
		{"Global", GetGlobalKeys()},
		{"Navigation", GetNavigationKeys()},
		{"Search", GetSearchKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazytable - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, group := range Groups() {
		b.WriteString(sectionStyle.Render(group.Title))
		b.WriteString("\n")
		for _, kb := range group.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 5))

	return boxStyle.Render(b.String())
}
