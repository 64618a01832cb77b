// ABOUTME: Session commands: login, logout, status and whoami
// ABOUTME: Login prompts for the operator token with huh when no flag is given

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/changexio/changex-console/internal/format"
	"github.com/changexio/changex-console/internal/resources"
	"github.com/changexio/changex-console/internal/session"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with an operator token",
	Long:  `Exchange an operator token for a session. The token is prompted for when --token is not given.`,
	Run: func(cmd *cobra.Command, args []string) {
		token := loginToken
		if token == "" {
			if err := promptToken(&token); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				os.Exit(exitUsage)
			}
		}
		execute(cmd, func(ctx context.Context, e *env, w io.Writer) int {
			return runLogin(ctx, e, w, token)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget stored tokens",
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, runLogout)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session is open and when its tokens expire",
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, runStatus)
	},
}

var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Short:       "Show the operator profile and payout wallet",
	Annotations: protected(),
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, runWhoami)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Operator token (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd, whoamiCmd)
}

func promptToken(token *string) error {
	return huh.NewInput().
		Title("Operator token").
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("token is required")
			}
			return nil
		}).
		Value(token).
		Run()
}

// runLogin exchanges the token for a session and returns exit code
func runLogin(ctx context.Context, e *env, w io.Writer, token string) int {
	token = strings.TrimSpace(token)
	if token == "" {
		fmt.Fprintln(w, "Error: token is required")
		return exitUsage
	}

	b, err := e.client.Login(ctx, token)
	if err != nil {
		return failed(w, err)
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(statusFor(true, *b)))
	} else {
		fmt.Fprintf(w, "Logged in as %s.\n", roleOrDefault(b.Role))
	}
	return exitOK
}

// runLogout ends the session and returns exit code
func runLogout(ctx context.Context, e *env, w io.Writer) int {
	if err := e.client.Logout(ctx); err != nil {
		return failed(w, err)
	}
	if !IsJSONOutput() {
		fmt.Fprintln(w, "Logged out.")
	}
	return exitOK
}

// sessionStatus is the status command's report.
type sessionStatus struct {
	LoggedIn       bool      `json:"logged_in"`
	Role           string    `json:"role,omitempty"`
	AccessExpires  time.Time `json:"access_expires,omitzero"`
	AccessExpired  bool      `json:"access_expired"`
	RefreshExpires time.Time `json:"refresh_expires,omitzero"`
	CanRenew       bool      `json:"can_renew"`
}

func statusFor(open bool, b session.Bundle) sessionStatus {
	n := time.Now()
	return sessionStatus{
		LoggedIn:       open,
		Role:           b.Role,
		AccessExpires:  b.AccessExpiry(),
		AccessExpired:  b.AccessExpired(n),
		RefreshExpires: b.RefreshExpiry(),
		CanRenew:       b.RefreshToken != "" && (b.RefreshTokenExpireAt == 0 || b.RefreshExpiry().After(n)),
	}
}

// runStatus reports the session gate and token expiries. Exit code 3 when
// no session is open.
func runStatus(ctx context.Context, e *env, w io.Writer) int {
	open := e.gate.IsOpen(ctx)
	b, err := e.store.Load(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage
	}

	st := statusFor(open, b)
	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatusJSON(st))
	} else {
		fmt.Fprintln(w, formatStatusHuman(st))
	}

	if !open {
		return exitUnauthenticated
	}
	return exitOK
}

// formatStatusHuman formats the session report for human readability
func formatStatusHuman(st sessionStatus) string {
	if !st.LoggedIn {
		return "Not logged in. Run 'changex login' first."
	}

	access := "unknown"
	if !st.AccessExpires.IsZero() {
		access = format.Datetime(st.AccessExpires.UnixMilli())
		if st.AccessExpired {
			access += " (expired)"
		}
	}
	refresh := "unknown"
	if !st.RefreshExpires.IsZero() {
		refresh = format.Datetime(st.RefreshExpires.UnixMilli())
	}
	renew := "no"
	if st.CanRenew {
		renew = "yes"
	}

	return fmt.Sprintf(`Logged in:       yes
Role:            %s
Access token:    %s
Refresh token:   %s
Can renew:       %s`,
		roleOrDefault(st.Role), access, refresh, renew)
}

// formatStatusJSON formats the session report as JSON
func formatStatusJSON(st sessionStatus) string {
	data, _ := json.MarshalIndent(st, "", "  ")
	return string(data)
}

func roleOrDefault(role string) string {
	if role == "" {
		return "operator"
	}
	return role
}

// runWhoami prints the operator profile and returns exit code
func runWhoami(ctx context.Context, e *env, w io.Writer) int {
	info, err := e.set.Profile.Load(ctx)
	if err != nil {
		return failed(w, err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(info, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintln(w, formatProfileHuman(info))
	}
	return exitOK
}

// formatProfileHuman lists scalar profile fields in key order.
func formatProfileHuman(info resources.ProfileInfo) string {
	keys := make([]string, 0, len(info.User))
	for k, v := range info.User {
		switch v.(type) {
		case string, float64, bool, json.Number:
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%-16s %v\n", k+":", info.User[k])
	}
	fmt.Fprintf(&sb, "%-16s %s", "wallet:", info.Wallet)
	if info.LatestApp != "" {
		fmt.Fprintf(&sb, "\n%-16s %s", "device app:", info.LatestApp)
	}
	return sb.String()
}
