// ABOUTME: Console glyphs in three sets: Nerd Font, plain Unicode and ASCII
// ABOUTME: The set is chosen once from CHANGEX_ICONS or the terminal in use

package icons

import (
	"os"
	"strings"
	"sync"
)

// Set names a glyph set.
type Set int

const (
	Unicode Set = iota
	Nerd
	ASCII
)

// nerdTerminals are TERM_PROGRAM values of terminals usually configured
// with a patched font.
var nerdTerminals = map[string]bool{
	"iTerm.app": true,
	"WezTerm":   true,
	"ghostty":   true,
	"kitty":     true,
	"alacritty": true,
}

// asciiTerms cannot render anything outside ASCII.
var asciiTerms = map[string]bool{
	"dumb":  true,
	"linux": true,
	"vt100": true,
}

var (
	active     Set
	activeOnce sync.Once
)

// Detect picks a glyph set from the environment. CHANGEX_ICONS accepts
// nerd, unicode or ascii and wins over terminal detection.
func Detect(getenv func(string) string) Set {
	switch strings.ToLower(strings.TrimSpace(getenv("CHANGEX_ICONS"))) {
	case "nerd":
		return Nerd
	case "unicode":
		return Unicode
	case "ascii":
		return ASCII
	}

	term := getenv("TERM")
	if asciiTerms[term] {
		return ASCII
	}
	if nerdTerminals[getenv("TERM_PROGRAM")] || term == "xterm-kitty" || term == "xterm-ghostty" {
		return Nerd
	}
	return Unicode
}

// Active returns the set detected for this process.
func Active() Set {
	activeOnce.Do(func() {
		active = Detect(os.Getenv)
	})
	return active
}

// Icon holds one glyph per set.
type Icon struct {
	NerdFont string
	Fallback string
	Plain    string
}

// In returns the glyph for set s.
func (i Icon) In(s Set) string {
	switch s {
	case Nerd:
		return i.NerdFont
	case ASCII:
		return i.Plain
	default:
		return i.Fallback
	}
}

func (i Icon) String() string {
	return i.In(Active())
}

var (
	Card    = Icon{"󰆛", "▭", "[C]"} // nf-md-credit_card
	Device  = Icon{"󰄜", "▯", "[D]"} // nf-md-cellphone
	Payment = Icon{"󰃤", "¤", "$"}   // nf-md-cash
	Dispute = Icon{"󰀩", "!", "!"}   // nf-md-alert_circle
	Bid     = Icon{"󰔠", "◇", "<>"}  // nf-md-tag
	Account = Icon{"󰀄", "@", "@"}   // nf-md-account
	Finance = Icon{"󰠓", "≡", "="}   // nf-md-finance

	CheckOK  = Icon{"󰗠", "✓", "ok"} // nf-md-check_circle
	Warning  = Icon{"󰀦", "⚠", "!!"} // nf-md-alert
	Critical = Icon{"󰅙", "✗", "x"}  // nf-md-close_circle

	Refresh = Icon{"󰑓", "↻", "~"}  // nf-md-refresh
	More    = Icon{"󰅀", "↓", "v"}  // nf-md-chevron_down
	Toggle  = Icon{"󰔡", "⇄", "<>"} // nf-md-toggle_switch
	Delete  = Icon{"󰆴", "⌫", "-"}  // nf-md-delete
	Back    = Icon{"󰁍", "←", "<"}  // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×", "q"}  // nf-md-exit_to_app
	Logout  = Icon{"󰍃", "⏻", "o"}  // nf-md-logout

	App      = Icon{"󰆛", "◈", "*"}
	Settings = Icon{"󰒓", "⚙", "#"} // nf-md-cog
)

// ForResource returns the icon for a list name.
func ForResource(name string) Icon {
	switch name {
	case "cards":
		return Card
	case "devices":
		return Device
	case "payments":
		return Payment
	case "disputes":
		return Dispute
	case "bids", "taken-bids":
		return Bid
	case "accounts":
		return Account
	case "finances":
		return Finance
	default:
		return Settings
	}
}
