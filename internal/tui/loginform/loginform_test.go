// ABOUTME: Tests for the operator token prompt
// ABOUTME: Verifies validation, submission and cancellation messages

package loginform

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestValidateToken(t *testing.T) {
	if err := validateToken("  "); err == nil {
		t.Error("expected error for blank token")
	}
	if err := validateToken("tok"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestLoginForm_EscCancels(t *testing.T) {
	l := New("")
	l.Init()

	_, cmd := l.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("expected CancelledMsg, got %T", cmd())
	}
}

func TestLoginForm_ViewShowsError(t *testing.T) {
	l := New("Login failed: token rejected")
	l.Init()

	if !strings.Contains(l.View(), "token rejected") {
		t.Error("expected error text in view")
	}
	if l.Err() != "Login failed: token rejected" {
		t.Errorf("unexpected Err %q", l.Err())
	}
}

func TestLoginForm_ViewShowsTitle(t *testing.T) {
	l := New("")
	l.Init()

	if !strings.Contains(l.View(), "Operator token") {
		t.Errorf("expected prompt title in view, got %q", l.View())
	}
}
