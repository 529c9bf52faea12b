package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

func TestSearchInput_Lifecycle(t *testing.T) {
	s := NewSearchInput(theme.DefaultTheme())
	s.Width = 60

	if s.View() != "" {
		t.Error("expected hidden input to render nothing")
	}

	s.Open()
	if !s.Visible || !s.Focused() {
		t.Fatal("expected input to be visible and focused")
	}

	var cmd tea.Cmd
	s, cmd = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("title:a")})
	if s.Value() != "title:a" {
		t.Errorf("expected value title:a, got %q", s.Value())
	}
	if cmd == nil {
		t.Error("expected a change notification")
	}

	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if msg, ok := cmd().(SearchSubmittedMsg); !ok || msg.Text != "title:a" {
		t.Errorf("expected submit message, got %#v", cmd())
	}

	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(CloseSearchMsg); !ok {
		t.Error("expected close message")
	}

	s.Blur()
	if s.Focused() || !s.Visible {
		t.Error("expected blurred input to stay visible")
	}

	s.Reset()
	if s.Visible || s.Value() != "" {
		t.Error("expected reset to clear and hide the input")
	}
}
