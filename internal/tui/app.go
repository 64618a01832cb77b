// ABOUTME: Root bubbletea model for the interactive console
// ABOUTME: Routes between login, resource menu and collection browser screens

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/format"
	"github.com/changexio/changex-console/internal/resources"
	"github.com/changexio/changex-console/internal/session"
	"github.com/changexio/changex-console/internal/tui/browser"
	"github.com/changexio/changex-console/internal/tui/icons"
	"github.com/changexio/changex-console/internal/tui/loginform"
	"github.com/changexio/changex-console/internal/tui/menu"
	"github.com/changexio/changex-console/internal/tui/overview"
	"github.com/changexio/changex-console/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenMenu
	ScreenBrowser
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
)

// Authenticator opens and closes the operator session.
type Authenticator interface {
	Login(ctx context.Context, token string) (*session.Bundle, error)
	Logout(ctx context.Context) error
}

// GateChecker reports whether a session is open.
type GateChecker interface {
	IsOpen(ctx context.Context) bool
}

// gateCheckedMsg is sent once the session gate has been read
type gateCheckedMsg struct {
	open bool
}

// loginDoneMsg is sent when a login attempt completes
type loginDoneMsg struct {
	bundle *session.Bundle
	err    error
}

// logoutDoneMsg is sent when logout completes
type logoutDoneMsg struct {
	err error
}

// overviewLoadedMsg is sent when the dashboard overview is loaded
type overviewLoadedMsg struct {
	overview resources.Overview
	err      error
}

// App is the root model for the TUI
type App struct {
	auth     Authenticator
	gate     GateChecker
	set      *resources.Set
	pageSize int

	screen     Screen
	width      int
	height     int
	err        error
	role       string
	lastUpdate time.Time
	overview   *resources.Overview

	// Child models
	login   *loginform.LoginForm
	menu    *menu.Menu
	browser *browser.Browser
}

// New creates a new TUI application
func New(auth Authenticator, gate GateChecker, set *resources.Set, pageSize int) *App {
	entries := make([]menu.Entry, 0, len(set.Tables()))
	for _, t := range set.Tables() {
		entries = append(entries, menu.Entry{Name: t.Name(), Title: t.Title()})
	}
	return &App{
		auth:     auth,
		gate:     gate,
		set:      set,
		pageSize: pageSize,
		screen:   ScreenLogin,
		login:    loginform.New(""),
		menu:     menu.New(entries),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	gate := a.gate
	return func() tea.Msg {
		return gateCheckedMsg{open: gate.IsOpen(context.Background())}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.browser != nil {
			a.browser.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.screen == ScreenLogin {
			return a.updateLogin(msg)
		}
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenMenu:
			return a.updateMenu(msg)
		case ScreenBrowser:
			return a.updateBrowser(msg)
		}

	case gateCheckedMsg:
		if msg.open {
			return a, a.showMenu()
		}
		return a, a.showLogin("")

	case loginform.SubmittedMsg:
		return a, a.doLogin(msg.Token)

	case loginform.CancelledMsg:
		return a, tea.Quit

	case loginDoneMsg:
		if msg.err != nil {
			return a, a.showLogin(loginError(msg.err))
		}
		if msg.bundle != nil {
			a.role = msg.bundle.Role
		}
		return a, a.showMenu()

	case menu.SelectedMsg:
		return a, a.openBrowser(msg.Name)

	case menu.LogoutMsg:
		return a, a.doLogout()

	case logoutDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, client.ErrUnauthenticated) {
			a.err = msg.err
			return a, nil
		}
		a.overview = nil
		a.role = ""
		return a, a.showLogin("")

	case browser.BackMsg:
		a.browser = nil
		a.screen = ScreenMenu
		return a, nil

	case browser.SessionExpiredMsg:
		return a, a.showLogin("Session expired. Please log in again.")

	case overviewLoadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, client.ErrUnauthenticated) {
				return a, a.showLogin("Session expired. Please log in again.")
			}
			a.err = msg.err
			return a, nil
		}
		ov := msg.overview
		a.overview = &ov
		a.lastUpdate = time.Now()
		a.err = nil
		return a, nil

	default:
		// Forward everything else to the active child (form internals, spinner ticks, fetch results)
		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenBrowser:
			return a.updateBrowser(msg)
		}
	}

	return a, nil
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.login.Update(msg)
	a.login = model.(*loginform.LoginForm)
	return a, cmd
}

func (a *App) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		return a, a.loadOverview()
	}
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updateBrowser(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.browser == nil {
		return a, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "q" {
		return a, tea.Quit
	}
	model, cmd := a.browser.Update(msg)
	a.browser = model.(*browser.Browser)
	if !a.browser.Busy() && a.browser.Err() == nil {
		a.lastUpdate = time.Now()
	}
	return a, cmd
}

// showLogin switches to a fresh token prompt showing errText.
func (a *App) showLogin(errText string) tea.Cmd {
	a.screen = ScreenLogin
	a.browser = nil
	a.err = nil
	a.login = loginform.New(errText)
	return a.login.Init()
}

func (a *App) showMenu() tea.Cmd {
	a.screen = ScreenMenu
	a.browser = nil
	return a.loadOverview()
}

func (a *App) openBrowser(name string) tea.Cmd {
	list, ok := a.set.Table(name)
	if !ok {
		a.err = fmt.Errorf("unknown list %q", name)
		return nil
	}
	a.err = nil
	a.browser = browser.New(list, a.pageSize)
	a.browser.SetSize(a.contentWidth(), a.contentHeight())
	a.screen = ScreenBrowser
	return a.browser.Init()
}

func loginError(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return "Login failed: " + apiErr.Message
	}
	return "Login failed: " + err.Error()
}

// doLogin creates a command that exchanges the token for a session
func (a *App) doLogin(token string) tea.Cmd {
	auth := a.auth
	return func() tea.Msg {
		b, err := auth.Login(context.Background(), token)
		return loginDoneMsg{bundle: b, err: err}
	}
}

// doLogout creates a command that ends the session
func (a *App) doLogout() tea.Cmd {
	auth := a.auth
	return func() tea.Msg {
		return logoutDoneMsg{err: auth.Logout(context.Background())}
	}
}

// loadOverview creates a command to fetch the dashboard overview
func (a *App) loadOverview() tea.Cmd {
	dash := a.set.Dashboard
	return func() tea.Msg {
		ov, err := dash.Overview(context.Background())
		return overviewLoadedMsg{overview: ov, err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = styles.ActivePanel.Width(a.contentWidth()).Render(a.login.View())
	case ScreenMenu:
		content = a.viewMenu()
	case ScreenBrowser:
		if a.browser != nil {
			content = styles.ActivePanel.Width(a.contentWidth()).Render(a.browser.View())
		}
	}

	if a.err != nil {
		content += "\n" + styles.Banner.Render(icons.Critical.String()+" "+a.err.Error())
	}
	return a.wrapWithFrame(content)
}

// viewMenu renders the menu beside the dashboard overview
func (a *App) viewMenu() string {
	left := styles.ActivePanel.Width(a.menuWidth()).Render(a.menu.View())
	right := styles.Panel.Width(a.overviewWidth()).Render(overview.Render(a.overview, a.overviewWidth()-panelPadding))
	if a.width < minTerminalWidth {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (a *App) frameWidth() int {
	// Guard against zero/small width before WindowSizeMsg is received
	if a.width < minTerminalWidth {
		return minTerminalWidth
	}
	return a.width
}

// contentWidth is the width inside a full-width panel
func (a *App) contentWidth() int {
	return a.frameWidth() - panelPadding
}

// menuWidth calculates the width for the menu pane
func (a *App) menuWidth() int {
	if a.width < minTerminalWidth {
		return a.contentWidth()
	}
	return a.contentWidth() / 3
}

// overviewWidth calculates the width for the overview pane
func (a *App) overviewWidth() int {
	if a.width < minTerminalWidth {
		return a.contentWidth()
	}
	return a.frameWidth() - a.menuWidth() - 2*panelPadding
}

// contentHeight calculates the height available for screen content
func (a *App) contentHeight() int {
	// Header, footer, two separating newlines and the panel border+padding.
	return max(5, a.height-8)
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render("changex console"))

	rightText := ""
	if a.screen != ScreenLogin {
		ctx := "signed in"
		if a.role != "" {
			ctx = a.role
		}
		if a.screen == ScreenBrowser && a.browser != nil {
			ctx += " · " + a.browser.Name()
		}
		rightText = contextStyle.Render(ctx) + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText)) // -4 for ╭─ and ─╮
	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Enter Login", "Esc Quit"}
	case ScreenMenu:
		shortcuts = []string{"↑↓ Navigate", "Enter Open", "r " + icons.Refresh.String() + " Refresh", "l " + icons.Logout.String() + " Logout", "q Quit"}
	case ScreenBrowser:
		if a.browser != nil {
			shortcuts = a.browser.Shortcuts()
		}
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}
	leftText := " " + strings.Join(styled, "  ")
	leftPlain := " " + strings.Join(shortcuts, "  ")

	rightText, rightPlain := "", ""
	if !a.lastUpdate.IsZero() && a.screen != ScreenLogin {
		elapsed := "Updated " + format.Since(a.lastUpdate.UnixMilli(), time.Now())
		rightText = statusStyle.Render(elapsed) + " "
		rightPlain = elapsed + " "
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftPlain)-lipgloss.Width(rightPlain)) // -4 for ╰─ and ─╯
	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Screen returns the active screen.
func (a *App) Screen() Screen {
	return a.screen
}

// Run starts the TUI
func Run(auth Authenticator, gate GateChecker, set *resources.Set, pageSize int) error {
	p := tea.NewProgram(
		New(auth, gate, set, pageSize),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
