// ABOUTME: Resource selection menu shown once a session is open
// ABOUTME: Lists every collection and reports the chosen one as a message

package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/changexio/changex-console/internal/tui/icons"
	"github.com/changexio/changex-console/internal/tui/styles"
)

// Entry is one menu line.
type Entry struct {
	Name  string
	Title string
}

// SelectedMsg is sent when an entry is chosen.
type SelectedMsg struct {
	Name string
}

// LogoutMsg is sent when the operator asks to log out.
type LogoutMsg struct{}

// Menu is the resource list.
type Menu struct {
	entries []Entry
	cursor  int
}

// New creates a menu over entries, cursor on the first.
func New(entries []Entry) *Menu {
	return &Menu{entries: entries}
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.entries) == 0 {
			return m, nil
		}
		name := m.entries[m.cursor].Name
		return m, func() tea.Msg { return SelectedMsg{Name: name} }
	case "l":
		return m, func() tea.Msg { return LogoutMsg{} }
	}
	return m, nil
}

// View implements tea.Model
func (m *Menu) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Lists"))
	sb.WriteString("\n")
	for i, e := range m.entries {
		line := icons.ForResource(e.Name).String() + " " + e.Title
		if i == m.cursor {
			sb.WriteString(styles.Selected.Render("› " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Selected returns the entry under the cursor.
func (m *Menu) Selected() (Entry, bool) {
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[m.cursor], true
}
