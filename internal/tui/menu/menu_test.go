// ABOUTME: Tests for the resource selection menu
// ABOUTME: Validates cursor movement, selection and logout messages

package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func entries() []Entry {
	return []Entry{
		{Name: "cards", Title: "Cards"},
		{Name: "devices", Title: "Devices"},
		{Name: "payments", Title: "Payments"},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMenu_SelectsEntryUnderCursor(t *testing.T) {
	m := New(entries())
	m.Update(key("down"))
	m.Update(key("j"))

	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", cmd())
	}
	if msg.Name != "payments" {
		t.Errorf("expected payments, got %s", msg.Name)
	}
}

func TestMenu_CursorStaysInBounds(t *testing.T) {
	m := New(entries())
	m.Update(key("up"))
	if e, _ := m.Selected(); e.Name != "cards" {
		t.Errorf("expected cursor on cards, got %s", e.Name)
	}

	for range 10 {
		m.Update(key("down"))
	}
	if e, _ := m.Selected(); e.Name != "payments" {
		t.Errorf("expected cursor on last entry, got %s", e.Name)
	}
}

func TestMenu_Logout(t *testing.T) {
	m := New(entries())
	_, cmd := m.Update(key("l"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(LogoutMsg); !ok {
		t.Errorf("expected LogoutMsg, got %T", cmd())
	}
}

func TestMenu_EmptyEnterIsNoop(t *testing.T) {
	m := New(nil)
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Error("expected no command for empty menu")
	}
	if _, ok := m.Selected(); ok {
		t.Error("expected no selection")
	}
}

func TestMenu_View(t *testing.T) {
	view := New(entries()).View()
	for _, want := range []string{"Cards", "Devices", "Payments", "›"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}
