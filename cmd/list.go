// ABOUTME: Resource commands and their shared list subcommand
// ABOUTME: Lists any collection page by page, or every page with --all

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/collection"
	"github.com/changexio/changex-console/internal/resources"
)

// Resource parent commands. Every one needs an open session.
var (
	cardsCmd    = resourceCmd("cards", "Manage payment cards")
	devicesCmd  = resourceCmd("devices", "Manage paired devices")
	paymentsCmd = resourceCmd("payments", "Browse payments")
	disputesCmd = resourceCmd("disputes", "Review payment disputes")
	bidsCmd     = resourceCmd("bids", "Take and settle bids")
	accountsCmd = resourceCmd("accounts", "Manage linked Telegram accounts")
	financesCmd = resourceCmd("finances", "Browse balance history")
)

func resourceCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:         name,
		Short:       short,
		Annotations: protected(),
	}
}

// listFlags are the options shared by every list subcommand.
type listFlags struct {
	search    string
	sort      string
	filters   []string
	page      int
	perPage   int
	all       bool
	taken     bool
	direction string
}

func newListCmd(name string, extra func(*cobra.Command, *listFlags)) *cobra.Command {
	f := &listFlags{}
	c := &cobra.Command{
		Use:   "list",
		Short: "List " + name,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			execute(cmd, func(ctx context.Context, e *env, w io.Writer) int {
				return runList(ctx, e, w, name, *f)
			})
		},
	}
	c.Flags().StringVar(&f.search, "search", "", "Search text")
	c.Flags().StringVar(&f.sort, "sort", "", "Sort key")
	c.Flags().StringArrayVar(&f.filters, "filter", nil, "Filter as key=value (repeatable)")
	c.Flags().IntVar(&f.page, "page", 1, "Page to show")
	c.Flags().IntVar(&f.perPage, "per-page", 0, "Items per page (default CHANGEX_PAGE_SIZE)")
	c.Flags().BoolVar(&f.all, "all", false, "Fetch every page from --page on")
	if extra != nil {
		extra(c, f)
	}
	return c
}

func init() {
	cardsCmd.AddCommand(newListCmd("cards", nil))
	devicesCmd.AddCommand(newListCmd("devices", nil))
	paymentsCmd.AddCommand(newListCmd("payments", nil))
	disputesCmd.AddCommand(newListCmd("disputes", nil))
	bidsCmd.AddCommand(newListCmd("bids", func(c *cobra.Command, f *listFlags) {
		c.Flags().BoolVar(&f.taken, "taken", false, "List bids you have taken instead of free ones")
	}))
	accountsCmd.AddCommand(newListCmd("accounts", nil))
	financesCmd.AddCommand(newListCmd("finances", func(c *cobra.Command, f *listFlags) {
		c.Flags().StringVar(&f.direction, "direction", "", "Only deposit or withdrawal movements")
	}))

	rootCmd.AddCommand(cardsCmd, devicesCmd, paymentsCmd, disputesCmd, bidsCmd, accountsCmd, financesCmd)
}

// listOptions builds the request body for a list command.
func listOptions(f listFlags, defaultPerPage int) (client.ListOptions, error) {
	opts := client.ListOptions{
		Search:       f.search,
		Sort:         f.sort,
		Page:         f.page,
		CountPerPage: f.perPage,
	}
	if opts.Page < 1 {
		return opts, fmt.Errorf("--page must be at least 1")
	}
	if opts.CountPerPage == 0 {
		opts.CountPerPage = defaultPerPage
	}
	if opts.CountPerPage < 0 {
		return opts, fmt.Errorf("--per-page must be positive")
	}
	for _, kv := range f.filters {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return opts, fmt.Errorf("invalid --filter %q, expected key=value", kv)
		}
		if opts.Filter == nil {
			opts.Filter = map[string]any{}
		}
		opts.Filter[k] = v
	}
	return opts, nil
}

// listResult is the JSON shape of a list command.
type listResult struct {
	Resource   string `json:"resource"`
	Items      any    `json:"items"`
	Page       int    `json:"page"`
	LastPage   int    `json:"last_page"`
	TotalCount int    `json:"total_count"`
}

// runList fetches the requested pages of a collection and returns exit code
func runList(ctx context.Context, e *env, w io.Writer, name string, f listFlags) int {
	if name == "bids" && f.taken {
		name = "taken-bids"
	}
	if f.direction != "" && f.direction != client.DirectionDeposit && f.direction != client.DirectionWithdrawal {
		fmt.Fprintf(w, "Error: --direction must be %s or %s\n", client.DirectionDeposit, client.DirectionWithdrawal)
		return exitUsage
	}

	t, ok := e.set.Table(name)
	if !ok {
		fmt.Fprintf(w, "Error: unknown list %q\n", name)
		return exitUsage
	}
	opts, err := listOptions(f, e.pageSize())
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage
	}

	if err := fetchPages(ctx, t, opts, f.all); err != nil {
		return failed(w, err)
	}

	columns, rows, records := t.Columns(), t.Rows(), t.Records()
	if f.direction != "" {
		views := e.set.Finances.Deposits()
		if f.direction == client.DirectionWithdrawal {
			views = e.set.Finances.Withdrawals()
		}
		rows = make([][]string, len(views))
		for i, v := range views {
			rows[i] = resources.BalanceRow(v)
		}
		records = views
	}

	st := t.State()
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(listResult{
			Resource:   t.Name(),
			Items:      records,
			Page:       st.Page,
			LastPage:   st.LastPage,
			TotalCount: st.TotalCount,
		}, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatListHuman(t.Title(), columns, rows, st))
	}
	return exitOK
}

// fetchPages loads opts.Page and, with all set, every page after it.
func fetchPages(ctx context.Context, t resources.Table, opts client.ListOptions, all bool) error {
	if err := t.FetchFirstPage(ctx, opts); err != nil {
		return err
	}
	for all && t.State().HasMore() {
		if err := ctx.Err(); err != nil {
			return err
		}
		before := t.State().Page
		if err := t.LoadMore(ctx, t.NextPage(opts)); err != nil {
			return err
		}
		if t.State().Page <= before {
			break
		}
	}
	return nil
}

// formatListHuman renders rows as a bordered table with a paging footer.
func formatListHuman(title string, columns []string, rows [][]string, st collection.State) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No %s found.", strings.ToLower(title))
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	footer := fmt.Sprintf("%d shown", len(rows))
	if st.TotalCount > 0 {
		footer = fmt.Sprintf("%d of %d shown", len(rows), st.TotalCount)
	}
	if st.LastPage > 0 {
		footer += fmt.Sprintf(", page %d of %d", st.Page, st.LastPage)
	}
	if st.HasMore() {
		footer += fmt.Sprintf(". Use --page %d or --all for more", st.Page+1)
	}
	return tbl.String() + "\n" + footer + "."
}
