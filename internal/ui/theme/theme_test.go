package theme

import "testing"

func TestGetTheme(t *testing.T) {
	for _, name := range Names() {
		if got := GetTheme(name).Name; got != name {
			t.Errorf("expected theme %q, got %q", name, got)
		}
	}

	if got := GetTheme("no-such-theme").Name; got != "default" {
		t.Errorf("expected unknown names to fall back to default, got %q", got)
	}
	if got := GetTheme("mocha").Name; got != "catppuccin-mocha" {
		t.Errorf("expected mocha alias, got %q", got)
	}
}
