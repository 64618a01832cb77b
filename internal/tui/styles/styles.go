// ABOUTME: Shared lipgloss styles for the operator console
// ABOUTME: One palette for panels, status colors, the error banner and the rate bar

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	Primary   = lipgloss.Color("#0EA5A4") // Teal
	Secondary = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Yellow
	Danger    = lipgloss.Color("#DC2626") // Red
	Muted     = lipgloss.Color("#64748B") // Slate
	Text      = lipgloss.Color("#F8FAFC")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().Foreground(Muted)

	StatusOK       = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	StatusWarning  = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	StatusCritical = lipgloss.NewStyle().Foreground(Danger).Bold(true)

	// Panel frames an inactive pane; ActivePanel the one holding focus.
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = Panel.BorderForeground(Primary)

	// Banner is the one-line error strip above the footer.
	Banner = lipgloss.NewStyle().
		Foreground(Text).
		Background(Danger).
		Padding(0, 1)

	ValueStyle = lipgloss.NewStyle().Foreground(Text).Bold(true)

	// Selected is the highlighted menu entry.
	Selected = lipgloss.NewStyle().Foreground(Primary).Bold(true)
)

// ProgressBar renders a completion rate as a bar of width cells. Rates
// below 80 are yellow and below 50 red.
func ProgressBar(percent float64, width int) string {
	filled := min(max(int(percent/100*float64(width)), 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	color := Secondary
	switch {
	case percent < 50:
		color = Danger
	case percent < 80:
		color = Warning
	}
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}
