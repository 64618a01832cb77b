// ABOUTME: Tests for the root console model
// ABOUTME: Drives screen transitions with messages against a fake API server

package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/resources"
	"github.com/changexio/changex-console/internal/session"
	"github.com/changexio/changex-console/internal/tui/browser"
	"github.com/changexio/changex-console/internal/tui/loginform"
	"github.com/changexio/changex-console/internal/tui/menu"
)

type fakeAuth struct {
	loginErr  error
	logoutErr error
	tokens    []string
	logouts   int
}

func (f *fakeAuth) Login(_ context.Context, token string) (*session.Bundle, error) {
	f.tokens = append(f.tokens, token)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &session.Bundle{AccessToken: "acc", RefreshToken: "ref", Role: "trader"}, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logouts++
	return f.logoutErr
}

type fakeGate bool

func (g fakeGate) IsOpen(context.Context) bool { return bool(g) }

func newTestApp(t *testing.T, open bool) (*App, *fakeAuth) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/dashboard":
			json.NewEncoder(w).Encode(map[string]any{"dashboard": map[string]any{"paymentsCount": 4, "completePaymentsCount": 3}})
		case "/dashboard/chart":
			json.NewEncoder(w).Encode(map[string]any{"chart": []any{map[string]any{"paymentsCount": 4}}})
		case "/awaitingDisputes/count":
			json.NewEncoder(w).Encode(map[string]any{"count": 2})
		case "/cards/list":
			json.NewEncoder(w).Encode(map[string]any{
				"list":       []any{map[string]any{"uid": "c1", "pan": "4276000011112222", "bank": "sberbank", "status": "active"}},
				"page":       1,
				"lastPage":   1,
				"totalCount": 1,
			})
		default:
			w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(server.Close)

	backend := session.NewMemoryBackend()
	c := client.New(server.URL, session.NewStore(backend), session.NewGate(backend))
	auth := &fakeAuth{}
	app := New(auth, fakeGate(open), resources.NewSet(c), 20)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, auth
}

// run executes cmd and feeds every resulting message back into the app.
// Spinner ticks and the login form's own commands are not followed.
func run(a *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(a, c)
		}
		return
	}
	switch msg.(type) {
	case gateCheckedMsg, loginDoneMsg, logoutDoneMsg, overviewLoadedMsg,
		menu.SelectedMsg, menu.LogoutMsg, browser.BackMsg, browser.SessionExpiredMsg:
	case loginform.SubmittedMsg:
		_, next := a.Update(msg)
		run(a, next)
		return
	default:
		// Browser fetch results are private to that package.
		if !strings.HasPrefix(fmt.Sprintf("%T", msg), "browser.") {
			return
		}
	}
	_, next := a.Update(msg)
	if a.Screen() != ScreenLogin {
		run(a, next)
	}
}

func TestApp_ClosedGateShowsLogin(t *testing.T) {
	app, _ := newTestApp(t, false)
	run(app, app.Init())

	if app.Screen() != ScreenLogin {
		t.Errorf("expected login screen, got %v", app.Screen())
	}
	if !strings.Contains(app.View(), "Operator token") {
		t.Error("expected token prompt in view")
	}
}

func TestApp_OpenGateShowsMenuWithOverview(t *testing.T) {
	app, _ := newTestApp(t, true)
	run(app, app.Init())

	if app.Screen() != ScreenMenu {
		t.Fatalf("expected menu screen, got %v", app.Screen())
	}
	if app.overview == nil {
		t.Fatal("expected overview loaded")
	}
	if app.overview.AwaitingDisputes != 2 {
		t.Errorf("expected 2 awaiting disputes, got %d", app.overview.AwaitingDisputes)
	}
	view := app.View()
	for _, want := range []string{"Cards", "Finances", "75", "2 awaiting disputes"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestApp_LoginSuccessOpensMenu(t *testing.T) {
	app, auth := newTestApp(t, false)
	run(app, app.Init())

	run(app, func() tea.Msg { return loginform.SubmittedMsg{Token: "tok"} })

	if len(auth.tokens) != 1 || auth.tokens[0] != "tok" {
		t.Errorf("expected login with tok, got %v", auth.tokens)
	}
	if app.Screen() != ScreenMenu {
		t.Errorf("expected menu screen, got %v", app.Screen())
	}
	if app.role != "trader" {
		t.Errorf("expected role trader, got %q", app.role)
	}
}

func TestApp_LoginFailureStaysOnLogin(t *testing.T) {
	app, auth := newTestApp(t, false)
	auth.loginErr = &client.APIError{StatusCode: 401, Code: "bad_token", Message: "token rejected"}
	run(app, app.Init())

	run(app, func() tea.Msg { return loginform.SubmittedMsg{Token: "tok"} })

	if app.Screen() != ScreenLogin {
		t.Fatalf("expected login screen, got %v", app.Screen())
	}
	if app.login.Err() != "Login failed: token rejected" {
		t.Errorf("unexpected login error %q", app.login.Err())
	}
}

func TestApp_BrowseAndBack(t *testing.T) {
	app, _ := newTestApp(t, true)
	run(app, app.Init())

	run(app, func() tea.Msg { return menu.SelectedMsg{Name: "cards"} })
	if app.Screen() != ScreenBrowser {
		t.Fatalf("expected browser screen, got %v", app.Screen())
	}
	if app.browser.Name() != "cards" {
		t.Errorf("expected cards browser, got %s", app.browser.Name())
	}

	run(app, func() tea.Msg { return browser.BackMsg{} })
	if app.Screen() != ScreenMenu || app.browser != nil {
		t.Errorf("expected menu without browser, got %v", app.Screen())
	}
}

func TestApp_UnknownListShowsBanner(t *testing.T) {
	app, _ := newTestApp(t, true)
	run(app, app.Init())

	run(app, func() tea.Msg { return menu.SelectedMsg{Name: "nope"} })
	if app.Screen() != ScreenMenu {
		t.Errorf("expected to stay on menu, got %v", app.Screen())
	}
	if !strings.Contains(app.View(), "unknown list") {
		t.Error("expected error banner")
	}
}

func TestApp_SessionExpiredReturnsToLogin(t *testing.T) {
	app, _ := newTestApp(t, true)
	run(app, app.Init())
	run(app, func() tea.Msg { return menu.SelectedMsg{Name: "cards"} })

	run(app, func() tea.Msg { return browser.SessionExpiredMsg{} })

	if app.Screen() != ScreenLogin {
		t.Fatalf("expected login screen, got %v", app.Screen())
	}
	if !strings.Contains(app.login.Err(), "Session expired") {
		t.Errorf("expected expiry notice, got %q", app.login.Err())
	}
}

func TestApp_Logout(t *testing.T) {
	app, auth := newTestApp(t, true)
	run(app, app.Init())

	run(app, func() tea.Msg { return menu.LogoutMsg{} })

	if auth.logouts != 1 {
		t.Errorf("expected one logout, got %d", auth.logouts)
	}
	if app.Screen() != ScreenLogin {
		t.Errorf("expected login screen, got %v", app.Screen())
	}
}

func TestApp_LogoutFailureKeepsMenu(t *testing.T) {
	app, auth := newTestApp(t, true)
	auth.logoutErr = errors.New("network down")
	run(app, app.Init())

	run(app, func() tea.Msg { return menu.LogoutMsg{} })

	if app.Screen() != ScreenMenu {
		t.Errorf("expected menu screen, got %v", app.Screen())
	}
	if !strings.Contains(app.View(), "network down") {
		t.Error("expected error banner")
	}
}

func TestApp_FrameFitsWidth(t *testing.T) {
	app, _ := newTestApp(t, true)
	run(app, app.Init())

	header := app.renderHeader()
	footer := app.renderFooter()
	if !strings.Contains(header, "changex console") {
		t.Error("expected title in header")
	}
	if w := lipgloss.Width(header); w != 120 {
		t.Errorf("expected header width 120, got %d", w)
	}
	if w := lipgloss.Width(footer); w != 120 {
		t.Errorf("expected footer width 120, got %d", w)
	}
}
