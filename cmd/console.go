// ABOUTME: Console command launching the interactive terminal UI
// ABOUTME: Redirects logging to a file so it does not corrupt the screen

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/changexio/changex-console/internal/logger"
	"github.com/changexio/changex-console/internal/tui"
)

// runTUI is swapped in tests.
var runTUI = func(e *env) error {
	return tui.Run(e.client, e.gate, e.set, e.pageSize())
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive console",
	Long: `Open a full-screen console to browse and manage every list.

The console asks for an operator token when no session is open and returns
to the token prompt whenever the session can no longer be renewed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, runConsole)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// runConsole starts the TUI and returns exit code
func runConsole(_ context.Context, e *env, w io.Writer) int {
	closeLog, err := logger.InitFile(e.cfg.ConfigDir)
	if err != nil {
		slog.Warn("Console logging disabled", "error", err)
	} else {
		defer closeLog()
	}

	if err := runTUI(e); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage
	}
	return exitOK
}
