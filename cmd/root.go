// ABOUTME: Root command for the changex console CLI
// ABOUTME: Handles global flags, exit codes and the auth-gate rule

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/changexio/changex-console/internal/config"
)

var (
	apiURL     string
	jsonOutput bool
)

// Exit codes shared by every command.
const (
	exitOK              = 0
	exitUsage           = 1
	exitAPIError        = 2
	exitUnauthenticated = 3
)

// authAnnotation marks commands that need an open session gate. Subcommands
// inherit it from their parent.
const (
	authAnnotation = "changex/auth"
	authRequired   = "required"
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "changex",
	Short: "Operator console for the changex admin API",
	Long: `changex is a command-line and terminal console for changex operators.

It signs in with an operator token, keeps the session renewed, and lets you
browse and manage cards, devices, payments, disputes, bids, accounts and
balance history.

Environment Variables:
  CHANGEX_API_URL          Admin API URL (required unless --api-url is given)
  CHANGEX_SESSION_BACKEND  Token storage: file (default), memory, redis
  CHANGEX_CONFIG_DIR       Directory for session.json and debug.log
  LOG_LEVEL, LOG_FORMAT    Diagnostic logging to stderr

Exit codes: 0 ok, 1 usage, 2 API error, 3 not logged in.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Admin API URL (overrides CHANGEX_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// GetAPIURL returns the API URL from flag or env (in priority order). There
// is no default; an empty result means nothing is configured.
func GetAPIURL() string {
	if apiURL != "" {
		return config.NormalizeURL(apiURL)
	}
	return config.NormalizeURL(os.Getenv("CHANGEX_API_URL"))
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// requiresAuth reports whether cmd or any parent carries the auth annotation.
func requiresAuth(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[authAnnotation] == authRequired {
			return true
		}
	}
	return false
}

func protected() map[string]string {
	return map[string]string{authAnnotation: authRequired}
}
