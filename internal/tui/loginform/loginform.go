// ABOUTME: Operator token prompt shown while no session is open
// ABOUTME: Wraps a huh form and reports the entered token as a message

package loginform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// SubmittedMsg carries the token the operator entered.
type SubmittedMsg struct {
	Token string
}

// CancelledMsg is sent when the operator leaves the prompt with esc.
type CancelledMsg struct{}

// LoginForm is the token prompt.
type LoginForm struct {
	form  *huh.Form
	token string
	err   string
	width int
}

// New creates an empty prompt. A non-empty errText is shown above it, for
// example after a rejected token.
func New(errText string) *LoginForm {
	l := &LoginForm{err: errText}
	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Operator token").
				Description("Paste the token issued for your operator account").
				EchoMode(huh.EchoModePassword).
				Validate(validateToken).
				Value(&l.token),
		),
	).WithTheme(huh.ThemeBase()).WithShowHelp(false)
	return l
}

func validateToken(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("token is required")
	}
	return nil
}

// Init implements tea.Model
func (l *LoginForm) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *LoginForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return l, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		token := strings.TrimSpace(l.token)
		return l, func() tea.Msg { return SubmittedMsg{Token: token} }
	}
	return l, cmd
}

// View implements tea.Model
func (l *LoginForm) View() string {
	if l.err == "" {
		return l.form.View()
	}
	return l.err + "\n\n" + l.form.View()
}

// Err returns the message shown above the prompt.
func (l *LoginForm) Err() string {
	return l.err
}
