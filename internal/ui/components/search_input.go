package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// SearchChangedMsg is sent whenever the search text is edited
type SearchChangedMsg struct {
	Text string
}

// SearchSubmittedMsg is sent when enter is pressed; the results stay
// displayed and the list takes the focus
type SearchSubmittedMsg struct {
	Text string
}

// CloseSearchMsg is sent when search should be closed
type CloseSearchMsg struct{}

// SearchInput provides a search input box
type SearchInput struct {
	Input   textinput.Model
	Theme   theme.Theme
	Width   int
	Visible bool
}

// NewSearchInput creates a new search input
func NewSearchInput(th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = "Search... (field:value, \"phrase\")"
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{
		Input: ti,
		Theme: th,
	}
}

// Open shows and focuses the input
func (s *SearchInput) Open() tea.Cmd {
	s.Visible = true
	return s.Input.Focus()
}

// Blur keeps the input visible but stops taking keys
func (s *SearchInput) Blur() {
	s.Input.Blur()
}

// Focused reports whether the input takes keys
func (s *SearchInput) Focused() bool {
	return s.Input.Focused()
}

// Reset clears and hides the search input
func (s *SearchInput) Reset() {
	s.Input.SetValue("")
	s.Input.Blur()
	s.Visible = false
}

// Value returns the current search text
func (s *SearchInput) Value() string {
	return s.Input.Value()
}

// Update handles messages
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			text := s.Input.Value()
			return s, func() tea.Msg {
				return SearchSubmittedMsg{Text: text}
			}
		case "esc":
			return s, func() tea.Msg {
				return CloseSearchMsg{}
			}
		}
	}

	before := s.Input.Value()
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)

	if text := s.Input.Value(); text != before {
		changed := func() tea.Msg { return SearchChangedMsg{Text: text} }
		return s, tea.Batch(cmd, changed)
	}
	return s, cmd
}

// View renders the search input
func (s *SearchInput) View() string {
	if !s.Visible {
		return ""
	}

	s.Input.Width = max(s.Width-8, 20)

	border := s.Theme.Border
	if s.Input.Focused() {
		border = s.Theme.BorderFocused
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(s.Width-2, 20))

	return boxStyle.Render("/ " + s.Input.View())
}
