// ABOUTME: Collection browser screen over any resource list
// ABOUTME: Table with refresh, load more, toggle and optimistic delete actions

package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/resources"
	"github.com/changexio/changex-console/internal/tui/icons"
	"github.com/changexio/changex-console/internal/tui/styles"
)

// BackMsg asks the app to return to the menu.
type BackMsg struct{}

// SessionExpiredMsg reports that the API no longer accepts the session.
type SessionExpiredMsg struct{}

// loadedMsg is sent when a fetch completes
type loadedMsg struct {
	err error
}

// actionDoneMsg is sent when a toggle or delete completes
type actionDoneMsg struct {
	verb string
	id   string
	err  error
}

// minColumnWidth keeps narrow columns readable.
const minColumnWidth = 6

// Browser shows one resource list.
type Browser struct {
	list    resources.Table
	opts    client.ListOptions
	grid    table.Model
	spinner spinner.Model
	busy    int
	status  string
	err     error
	width   int
	height  int
}

// New creates a browser for list; Init fetches the first page.
func New(list resources.Table, pageSize int) *Browser {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	grid := table.New(table.WithFocused(true), table.WithHeight(10))
	st := table.DefaultStyles()
	st.Header = st.Header.BorderStyle(lipgloss.NormalBorder()).BorderForeground(styles.Muted).BorderBottom(true).Bold(true)
	st.Selected = st.Selected.Foreground(styles.Text).Background(styles.Primary).Bold(false)
	grid.SetStyles(st)

	b := &Browser{
		list:    list,
		opts:    client.ListOptions{Page: 1, CountPerPage: pageSize},
		grid:    grid,
		spinner: s,
	}
	b.syncRows()
	return b
}

// Name returns the list name.
func (b *Browser) Name() string {
	return b.list.Name()
}

// Init implements tea.Model
func (b *Browser) Init() tea.Cmd {
	return b.refresh()
}

// SetSize fits the table into width by height cells.
func (b *Browser) SetSize(width, height int) {
	b.width = width
	b.height = height
	b.grid.SetWidth(width)
	b.grid.SetHeight(max(3, height-4))
	b.syncRows()
}

// Update implements tea.Model
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)

	case spinner.TickMsg:
		if b.busy == 0 {
			return b, nil
		}
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd

	case loadedMsg:
		b.busy--
		b.syncRows()
		if msg.err != nil {
			return b, b.fail(msg.err)
		}
		b.err = nil
		b.status = ""
		return b, nil

	case actionDoneMsg:
		b.busy--
		b.syncRows()
		if msg.err != nil {
			return b, b.fail(fmt.Errorf("%s %s: %w", msg.verb, msg.id, msg.err))
		}
		b.err = nil
		b.status = fmt.Sprintf("%s %s", msg.id, msg.verb)
		return b, nil
	}
	return b, nil
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return b, b.refresh()
	case "m":
		if b.list.State().HasMore() {
			return b, b.loadMore()
		}
		b.status = "No more pages"
		return b, nil
	case "t":
		return b, b.toggle()
	case "d":
		return b, b.remove()
	case "b", "esc":
		return b, func() tea.Msg { return BackMsg{} }
	}

	var cmd tea.Cmd
	b.grid, cmd = b.grid.Update(msg)
	return b, cmd
}

// fail records err; an expired session is escalated to the app.
func (b *Browser) fail(err error) tea.Cmd {
	if errors.Is(err, client.ErrUnauthenticated) {
		return func() tea.Msg { return SessionExpiredMsg{} }
	}
	b.err = err
	return nil
}

// start marks one more operation in flight and runs cmd with the spinner.
func (b *Browser) start(cmd tea.Cmd) tea.Cmd {
	b.busy++
	b.err = nil
	if b.busy == 1 {
		return tea.Batch(cmd, b.spinner.Tick)
	}
	return cmd
}

func (b *Browser) refresh() tea.Cmd {
	list, opts := b.list, b.opts
	return b.start(func() tea.Msg {
		return loadedMsg{err: list.FetchFirstPage(context.Background(), opts)}
	})
}

func (b *Browser) loadMore() tea.Cmd {
	list, opts := b.list, b.list.NextPage(b.opts)
	return b.start(func() tea.Msg {
		return loadedMsg{err: list.LoadMore(context.Background(), opts)}
	})
}

func (b *Browser) toggle() tea.Cmd {
	if !b.list.CanToggle() {
		b.status = "Toggle is not available here"
		return nil
	}
	id, ok := b.selectedID()
	if !ok {
		return nil
	}
	list := b.list
	return b.start(func() tea.Msg {
		return actionDoneMsg{verb: "toggled", id: id, err: list.Toggle(context.Background(), id)}
	})
}

// remove drops the row at once and reports the background delete later.
func (b *Browser) remove() tea.Cmd {
	if !b.list.CanRemove() {
		b.status = "Delete is not available here"
		return nil
	}
	id, ok := b.selectedID()
	if !ok {
		return nil
	}
	list := b.list
	if err := list.Remove(context.Background(), id); err != nil {
		b.err = err
		return nil
	}
	b.syncRows()
	return b.start(func() tea.Msg {
		return actionDoneMsg{verb: "removed", id: id, err: list.Wait()}
	})
}

func (b *Browser) selectedID() (string, bool) {
	ids := b.list.IDs()
	i := b.grid.Cursor()
	if i < 0 || i >= len(ids) {
		return "", false
	}
	return ids[i], true
}

// syncRows copies the list's current rows into the table.
func (b *Browser) syncRows() {
	names := b.list.Columns()
	rows := b.list.Rows()

	widths := make([]int, len(names))
	for i, n := range names {
		widths[i] = max(minColumnWidth, lipgloss.Width(n))
	}
	for _, r := range rows {
		for i := range widths {
			if i < len(r) {
				widths[i] = max(widths[i], lipgloss.Width(r[i]))
			}
		}
	}
	fitWidths(widths, b.width)

	cols := make([]table.Column, len(names))
	for i, n := range names {
		cols[i] = table.Column{Title: n, Width: widths[i]}
	}
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r)
	}

	// Rows must not outnumber columns while both are swapped. Emptying the
	// rows moves the cursor to -1, so it is restored afterwards.
	cursor := b.grid.Cursor()
	b.grid.SetRows(nil)
	b.grid.SetColumns(cols)
	b.grid.SetRows(trows)
	if len(trows) > 0 {
		b.grid.SetCursor(min(max(cursor, 0), len(trows)-1))
	}
}

// fitWidths shrinks the widest columns until the total fits total.
func fitWidths(widths []int, total int) {
	if total <= 0 {
		return
	}
	// Each column gets two cells of padding.
	budget := total - 2*len(widths)
	for {
		sum, widest := 0, 0
		for i, w := range widths {
			sum += w
			if w > widths[widest] {
				widest = i
			}
		}
		if sum <= budget || widths[widest] <= minColumnWidth {
			return
		}
		widths[widest]--
	}
}

// View implements tea.Model
func (b *Browser) View() string {
	var sb strings.Builder

	title := icons.ForResource(b.list.Name()).String() + " " + b.list.Title()
	sb.WriteString(styles.Title.Render(title))
	sb.WriteString("\n")

	if len(b.list.IDs()) == 0 && b.busy == 0 {
		sb.WriteString(styles.Subtitle.Render("Nothing here yet. Press r to refresh."))
	} else {
		sb.WriteString(b.grid.View())
	}
	sb.WriteString("\n")
	sb.WriteString(b.statusLine())
	return sb.String()
}

func (b *Browser) statusLine() string {
	if b.busy > 0 {
		return b.spinner.View() + " Loading..."
	}
	if b.err != nil {
		return styles.StatusCritical.Render(icons.Critical.String() + " " + b.err.Error())
	}

	st := b.list.State()
	line := fmt.Sprintf("%d shown", st.Len)
	if st.TotalCount > 0 {
		line = fmt.Sprintf("%d of %d shown", st.Len, st.TotalCount)
	}
	if st.LastPage > 0 {
		line += fmt.Sprintf(", page %d of %d", st.Page, st.LastPage)
	}
	if b.status != "" {
		line += "  " + b.status
	}
	return styles.Subtitle.Render(line)
}

// Shortcuts lists the keys this screen handles.
func (b *Browser) Shortcuts() []string {
	keys := []string{"↑↓ Move", hint("r", icons.Refresh, "Refresh")}
	if b.list.State().HasMore() {
		keys = append(keys, hint("m", icons.More, "More"))
	}
	if b.list.CanToggle() {
		keys = append(keys, hint("t", icons.Toggle, "Toggle"))
	}
	if b.list.CanRemove() {
		keys = append(keys, hint("d", icons.Delete, "Delete"))
	}
	return append(keys, hint("b", icons.Back, "Back"), hint("q", icons.Quit, "Quit"))
}

func hint(key string, icon icons.Icon, label string) string {
	return key + " " + icon.String() + " " + label
}

// Err returns the last error shown.
func (b *Browser) Err() error {
	return b.err
}

// Busy reports whether any operation is in flight.
func (b *Browser) Busy() bool {
	return b.busy > 0
}
