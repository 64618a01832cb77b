// ABOUTME: Mutating subcommands for cards, devices, accounts, disputes and bids
// ABOUTME: Each wraps one resource controller operation and reports the result

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/format"
)

// pairingPollInterval is how often `devices pair --wait` checks the token.
var pairingPollInterval = 3 * time.Second

// idAction builds a subcommand that applies run to each id argument.
func idAction(use, short string, run func(ctx context.Context, e *env, w io.Writer, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			execute(cmd, func(ctx context.Context, e *env, w io.Writer) int {
				return runEach(ctx, e, w, args, run)
			})
		},
	}
}

// runEach stops at the first failing id.
func runEach(ctx context.Context, e *env, w io.Writer, ids []string, run func(ctx context.Context, e *env, w io.Writer, id string) error) int {
	for _, id := range ids {
		if err := run(ctx, e, w, id); err != nil {
			return failed(w, err)
		}
	}
	return exitOK
}

func printJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}

// report prints v as JSON or the human line.
func report(w io.Writer, v any, human string) {
	if IsJSONOutput() {
		printJSON(w, v)
		return
	}
	fmt.Fprintln(w, human)
}

type actionResult struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// Cards

var cardAdd struct {
	bank, pan, device, limit, comment string
}

var cardsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a card bound to a device",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, runCardsAdd)
	},
}

var cardsBanksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List banks a card can belong to",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, runCardsBanks)
	},
}

func cardOn(ctx context.Context, e *env, w io.Writer, uid string) error {
	if err := e.set.Cards.Toggle(ctx, uid, false); err != nil {
		return err
	}
	report(w, actionResult{ID: uid, Action: "on"}, fmt.Sprintf("Card %s switched on.", uid))
	return nil
}

func cardOff(ctx context.Context, e *env, w io.Writer, uid string) error {
	if err := e.set.Cards.Toggle(ctx, uid, true); err != nil {
		return err
	}
	report(w, actionResult{ID: uid, Action: "off"}, fmt.Sprintf("Card %s switched off.", uid))
	return nil
}

func cardRemove(ctx context.Context, e *env, w io.Writer, uid string) error {
	if err := e.set.Cards.Remove(ctx, uid); err != nil {
		return err
	}
	if err := e.set.Cards.Wait(); err != nil {
		return err
	}
	report(w, actionResult{ID: uid, Action: "removed"}, fmt.Sprintf("Card %s removed.", uid))
	return nil
}

// runCardsAdd validates and creates a card, refusing a PAN already on file.
func runCardsAdd(ctx context.Context, e *env, w io.Writer) int {
	pan := strings.ReplaceAll(cardAdd.pan, " ", "")
	if cardAdd.bank == "" || pan == "" || cardAdd.device == "" {
		fmt.Fprintln(w, "Error: --bank, --pan and --device are required")
		return exitUsage
	}
	limit, err := parseLimitFlag(cardAdd.limit)
	if err != nil {
		fmt.Fprintf(w, "Error: invalid --limit: %v\n", err)
		return exitUsage
	}

	exists, err := e.set.Cards.Exists(ctx, pan)
	if err != nil {
		return failed(w, err)
	}
	if exists {
		fmt.Fprintf(w, "Error: card ending %s is already registered\n", format.LastN(pan, 4))
		return exitUsage
	}

	card, err := e.set.Cards.Create(ctx, client.NewCard{
		Bank:                cardAdd.bank,
		Pan:                 pan,
		DeviceID:            cardAdd.device,
		MaxDailyOrderSumUSD: limit,
		Comment:             cardAdd.comment,
	})
	if err != nil {
		return failed(w, err)
	}
	report(w, card, fmt.Sprintf("Card %s added (*%s).", card.UID, format.LastN(card.Pan, 4)))
	return exitOK
}

func parseLimitFlag(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return format.ParseAmount(s)
}

// runCardsBanks lists the banks known to the server.
func runCardsBanks(ctx context.Context, e *env, w io.Writer) int {
	banks, err := e.set.Cards.LoadBanks(ctx)
	if err != nil {
		return failed(w, err)
	}
	if IsJSONOutput() {
		printJSON(w, banks)
		return exitOK
	}
	for _, b := range banks {
		fmt.Fprintf(w, "%-16s %s\n", b.Slug, b.Name)
	}
	return exitOK
}

// Devices

var deviceEdit struct {
	name, comment string
}

var devicePairWait bool

var devicesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Rename a device and set its comment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, func(ctx context.Context, e *env, w io.Writer) int {
			return runDevicesEdit(ctx, e, w, args[0])
		})
	},
}

var devicesPairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Issue a pairing token for a new device",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, func(ctx context.Context, e *env, w io.Writer) int {
			return runDevicesPair(ctx, e, w, devicePairWait)
		})
	},
}

func deviceRemove(ctx context.Context, e *env, w io.Writer, id string) error {
	if err := e.set.Devices.Remove(ctx, id); err != nil {
		return err
	}
	if err := e.set.Devices.Wait(); err != nil {
		return err
	}
	report(w, actionResult{ID: id, Action: "removed"}, fmt.Sprintf("Device %s removed.", id))
	return nil
}

func runDevicesEdit(ctx context.Context, e *env, w io.Writer, id string) int {
	if strings.TrimSpace(deviceEdit.name) == "" {
		fmt.Fprintln(w, "Error: --name is required")
		return exitUsage
	}
	d, err := e.set.Devices.SaveEdit(ctx, id, deviceEdit.name, deviceEdit.comment)
	if err != nil {
		return failed(w, err)
	}
	report(w, d, fmt.Sprintf("Device %s saved as %q.", d.DeviceID, d.Name))
	return exitOK
}

// runDevicesPair prints a pairing token and optionally waits for a device
// to consume it.
func runDevicesPair(ctx context.Context, e *env, w io.Writer, wait bool) int {
	token, err := e.set.Devices.PairingQR(ctx)
	if err != nil {
		return failed(w, err)
	}
	if IsJSONOutput() && !wait {
		printJSON(w, map[string]string{"token": token})
		return exitOK
	}
	if !IsJSONOutput() {
		fmt.Fprintf(w, "Pairing token: %s\n", token)
	}
	if !wait {
		return exitOK
	}

	if !IsJSONOutput() {
		fmt.Fprintln(w, "Waiting for the device to scan the code...")
	}
	if err := e.set.Devices.WaitForPairing(ctx, pairingPollInterval); err != nil {
		return failed(w, err)
	}
	report(w, map[string]any{"token": token, "paired": true}, "Device paired.")
	return exitOK
}

// Accounts

var accountsCodeCmd = &cobra.Command{
	Use:   "code",
	Short: "Generate a code to link a Telegram account",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, runAccountsCode)
	},
}

func accountRemove(ctx context.Context, e *env, w io.Writer, uid string) error {
	if err := e.set.Accounts.Remove(ctx, uid); err != nil {
		return err
	}
	if err := e.set.Accounts.Wait(); err != nil {
		return err
	}
	report(w, actionResult{ID: uid, Action: "removed"}, fmt.Sprintf("Account %s removed.", uid))
	return nil
}

func runAccountsCode(ctx context.Context, e *env, w io.Writer) int {
	code, err := e.set.Accounts.ConnectCode(ctx)
	if err != nil {
		return failed(w, err)
	}
	report(w, map[string]string{"code": code}, "Connect code: "+code)
	return exitOK
}

// Disputes

var disputesAwaitingCmd = &cobra.Command{
	Use:   "awaiting",
	Short: "Count disputes awaiting a decision",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, runDisputesAwaiting)
	},
}

func disputeApprove(ctx context.Context, e *env, w io.Writer, id string) error {
	p, err := e.set.Disputes.Approve(ctx, id)
	if err != nil {
		return err
	}
	report(w, p, fmt.Sprintf("Dispute %s approved, status %s.", id, p.Status))
	return nil
}

func disputeCancel(ctx context.Context, e *env, w io.Writer, id string) error {
	p, err := e.set.Disputes.Cancel(ctx, id)
	if err != nil {
		return err
	}
	report(w, p, fmt.Sprintf("Dispute %s cancelled, status %s.", id, p.Status))
	return nil
}

func runDisputesAwaiting(ctx context.Context, e *env, w io.Writer) int {
	n, err := e.set.Disputes.RefreshAwaiting(ctx)
	if err != nil {
		return failed(w, err)
	}
	report(w, map[string]int{"awaiting": n}, fmt.Sprintf("%d disputes awaiting a decision.", n))
	return exitOK
}

// Bids

var bidReceipt string

var bidsConfirmCmd = &cobra.Command{
	Use:   "confirm <id>",
	Short: "Upload the payment receipt for a taken bid",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(cmd, func(ctx context.Context, e *env, w io.Writer) int {
			return runBidsConfirm(ctx, e, w, args[0], bidReceipt)
		})
	},
}

func bidTake(ctx context.Context, e *env, w io.Writer, uid string) error {
	if err := e.set.Bids.Take(ctx, uid); err != nil {
		return err
	}
	report(w, actionResult{ID: uid, Action: "taken"}, fmt.Sprintf("Bid %s taken.", uid))
	return nil
}

func bidCancel(ctx context.Context, e *env, w io.Writer, uid string) error {
	if err := e.set.Bids.CancelTaken(ctx, uid); err != nil {
		return err
	}
	report(w, actionResult{ID: uid, Action: "cancelled"}, fmt.Sprintf("Bid %s cancelled.", uid))
	return nil
}

func runBidsConfirm(ctx context.Context, e *env, w io.Writer, uid, receiptPath string) int {
	if receiptPath == "" {
		fmt.Fprintln(w, "Error: --receipt is required")
		return exitUsage
	}
	data, err := os.ReadFile(receiptPath)
	if err != nil {
		fmt.Fprintf(w, "Error: failed to read receipt: %v\n", err)
		return exitUsage
	}

	bid, err := e.set.Bids.Confirm(ctx, uid, filepath.Base(receiptPath), data)
	if err != nil {
		return failed(w, err)
	}
	report(w, bid, fmt.Sprintf("Receipt attached to bid %s.", uid))
	return exitOK
}

func init() {
	cardsAddCmd.Flags().StringVar(&cardAdd.bank, "bank", "", "Bank slug (see 'changex cards banks')")
	cardsAddCmd.Flags().StringVar(&cardAdd.pan, "pan", "", "Card number")
	cardsAddCmd.Flags().StringVar(&cardAdd.device, "device", "", "Device ID servicing the card")
	cardsAddCmd.Flags().StringVar(&cardAdd.limit, "limit", "", "Daily order limit in USD")
	cardsAddCmd.Flags().StringVar(&cardAdd.comment, "comment", "", "Comment")
	cardsCmd.AddCommand(
		idAction("on", "Switch cards on", cardOn),
		idAction("off", "Switch cards off", cardOff),
		idAction("rm", "Remove cards", cardRemove),
		cardsAddCmd,
		cardsBanksCmd,
	)

	devicesEditCmd.Flags().StringVar(&deviceEdit.name, "name", "", "Device name")
	devicesEditCmd.Flags().StringVar(&deviceEdit.comment, "comment", "", "Device comment")
	devicesPairCmd.Flags().BoolVar(&devicePairWait, "wait", false, "Wait until a device pairs")
	devicesCmd.AddCommand(
		idAction("rm", "Hide devices", deviceRemove),
		devicesEditCmd,
		devicesPairCmd,
	)

	accountsCmd.AddCommand(
		idAction("rm", "Unlink accounts", accountRemove),
		accountsCodeCmd,
	)

	disputesCmd.AddCommand(
		idAction("approve", "Approve disputes", disputeApprove),
		idAction("cancel", "Cancel disputes", disputeCancel),
		disputesAwaitingCmd,
	)

	bidsConfirmCmd.Flags().StringVar(&bidReceipt, "receipt", "", "Receipt file (image or PDF)")
	bidsCmd.AddCommand(
		idAction("take", "Take free bids", bidTake),
		idAction("cancel", "Cancel taken bids", bidCancel),
		bidsConfirmCmd,
	)
}
