// ABOUTME: Dashboard command for the changex console CLI
// ABOUTME: Shows payment counters for today, one day or a date range

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/format"
	"github.com/changexio/changex-console/internal/resources"
)

var (
	dashboardDate string
	dashboardFrom string
	dashboardTo   string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show payment counters and completion rate",
	Long: `Show the dashboard counters. Without flags the current period is shown together
with the number of disputes awaiting a decision. Dates use YYYY-MM-DD.`,
	Annotations: protected(),
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, func(ctx context.Context, e *env, w io.Writer) int {
			return runDashboard(ctx, e, w, dashboardDate, dashboardFrom, dashboardTo)
		})
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardDate, "date", "", "Single day (YYYY-MM-DD)")
	dashboardCmd.Flags().StringVar(&dashboardFrom, "from", "", "Range start (YYYY-MM-DD), requires --to")
	dashboardCmd.Flags().StringVar(&dashboardTo, "to", "", "Range end (YYYY-MM-DD), requires --from")
	dashboardCmd.MarkFlagsRequiredTogether("from", "to")
	dashboardCmd.MarkFlagsMutuallyExclusive("date", "from")
	rootCmd.AddCommand(dashboardCmd)
}

// runDashboard loads the requested counters and returns exit code
func runDashboard(ctx context.Context, e *env, w io.Writer, date, from, to string) int {
	var (
		ov  resources.Overview
		err error
	)
	switch {
	case date != "":
		day, perr := format.ParseDateYMD(date)
		if perr != nil {
			fmt.Fprintf(w, "Error: invalid --date: %v\n", perr)
			return exitUsage
		}
		ov.Summary, err = e.set.Dashboard.ForDate(ctx, day)
	case from != "" || to != "":
		start, perr := format.ParseDateYMD(from)
		if perr != nil {
			fmt.Fprintf(w, "Error: invalid --from: %v\n", perr)
			return exitUsage
		}
		end, perr := format.ParseDateYMD(to)
		if perr != nil {
			fmt.Fprintf(w, "Error: invalid --to: %v\n", perr)
			return exitUsage
		}
		if end.Before(start) {
			fmt.Fprintln(w, "Error: --to is before --from")
			return exitUsage
		}
		ov.Summary, err = e.set.Dashboard.ForRange(ctx, start, end)
	default:
		ov, err = e.set.Dashboard.Overview(ctx)
	}
	if err != nil {
		return failed(w, err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(ov, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatDashboardHuman(ov, date == "" && from == ""))
	}
	return exitOK
}

// formatDashboardHuman lists numeric counters in key order, then the rate.
func formatDashboardHuman(ov resources.Overview, withAwaiting bool) string {
	var sb strings.Builder
	writeStats(&sb, ov.Summary.Stats)
	fmt.Fprintf(&sb, "%-24s %s", "completion:", format.Percent(ov.Summary.Percentage))
	if withAwaiting {
		fmt.Fprintf(&sb, "\n%-24s %d", "awaiting disputes:", ov.AwaitingDisputes)
	}
	return sb.String()
}

func writeStats(sb *strings.Builder, s client.Stats) {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		switch s[k].(type) {
		case float64, json.Number, string:
			fmt.Fprintf(sb, "%-24s %v\n", k+":", s[k])
		}
	}
}
