// ABOUTME: Dashboard overview panel shown beside the resource menu
// ABOUTME: Renders counters, completion rate bar and awaiting disputes

package overview

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/changexio/changex-console/internal/format"
	"github.com/changexio/changex-console/internal/resources"
	"github.com/changexio/changex-console/internal/tui/icons"
	"github.com/changexio/changex-console/internal/tui/styles"
)

// maxCounters caps how many counters are listed.
const maxCounters = 8

// Render draws ov in width columns. A nil ov renders a loading line.
func Render(ov *resources.Overview, width int) string {
	if ov == nil {
		return styles.Subtitle.Render("Loading dashboard...")
	}
	if width < 20 {
		width = 20
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Dashboard"))
	sb.WriteString("\n")

	pct := ov.Summary.Percentage
	barWidth := max(10, width-12)
	fmt.Fprintf(&sb, "%s %s\n", statusIcon(pct), styles.ValueStyle.Render(format.Percent(pct)+" completed"))
	sb.WriteString(styles.ProgressBar(pct, barWidth))
	sb.WriteString("\n\n")

	label := lipgloss.NewStyle().Foreground(styles.Muted)
	for _, line := range counters(ov.Summary.Stats) {
		fmt.Fprintf(&sb, "%s %s\n", label.Render(fmt.Sprintf("%-22s", line[0])), line[1])
	}

	sb.WriteString("\n")
	disputes := fmt.Sprintf("%s %d awaiting disputes", icons.Dispute.String(), ov.AwaitingDisputes)
	if ov.AwaitingDisputes > 0 {
		sb.WriteString(styles.StatusWarning.Render(disputes))
	} else {
		sb.WriteString(styles.StatusOK.Render(disputes))
	}
	return sb.String()
}

func statusIcon(pct float64) string {
	switch {
	case pct >= 80:
		return styles.StatusOK.Render(icons.CheckOK.String())
	case pct >= 50:
		return styles.StatusWarning.Render(icons.Warning.String())
	default:
		return styles.StatusCritical.Render(icons.Critical.String())
	}
}

// counters lists numeric stats in key order as label/value pairs.
func counters(s map[string]any) [][2]string {
	keys := make([]string, 0, len(s))
	for k, v := range s {
		if _, ok := v.(float64); ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	if len(keys) > maxCounters {
		keys = keys[:maxCounters]
	}

	out := make([][2]string, len(keys))
	for i, k := range keys {
		v := s[k].(float64)
		val := fmt.Sprintf("%.0f", v)
		if v != float64(int64(v)) {
			val = format.Amount(v)
		}
		out[i] = [2]string{k, val}
	}
	return out
}
