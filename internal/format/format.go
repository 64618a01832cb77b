// ABOUTME: Display formatting for amounts, dates and relative ages
// ABOUTME: Shared by the CLI tables and the interactive console views

package format

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Europe/Moscow must resolve on hosts without zoneinfo
	"unicode"

	"github.com/dustin/go-humanize"
)

const (
	// amountLayout groups thousands with a space and uses a decimal comma.
	amountLayout   = "# ###,##"
	datetimeLayout = "02.01.2006, 15:04"
	dateYMDLayout  = "2006-01-02"
)

// Moscow is the zone dispute payout times are shown in.
var Moscow = loadLocation("Europe/Moscow")

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("Unknown time zone, falling back to UTC", "zone", name, "error", err)
		return time.UTC
	}
	return loc
}

// Amount renders a money value with two decimals, e.g. "1 234,50".
func Amount(v float64) string {
	return humanize.FormatFloat(amountLayout, v)
}

// Datetime renders epoch milliseconds in local time as "dd.mm.yyyy, hh:mm".
// Zero renders as "".
func Datetime(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).In(time.Local).Format(datetimeLayout)
}

// DatetimeIn is Datetime in the given zone.
func DatetimeIn(ms int64, loc *time.Location) string {
	if ms == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc).Format(datetimeLayout)
}

// DateYMD renders the calendar date of t as "yyyy-mm-dd".
func DateYMD(t time.Time) string {
	return t.Format(dateYMDLayout)
}

// ParseDateYMD parses a "yyyy-mm-dd" date in local time.
func ParseDateYMD(s string) (time.Time, error) {
	return time.ParseInLocation(dateYMDLayout, strings.TrimSpace(s), time.Local)
}

// Since buckets the age of ms relative to now into a coarse phrase.
// Future instants count as just happened. Zero renders as "".
func Since(ms int64, now time.Time) string {
	if ms == 0 {
		return ""
	}
	age := now.Sub(time.UnixMilli(ms))
	if age < 0 {
		age = 0
	}

	days := int(age / (24 * time.Hour))
	switch {
	case age < time.Minute:
		return "a few seconds ago"
	case age <= 15*time.Minute:
		return "a few minutes ago"
	case age <= 30*time.Minute:
		return "half an hour ago"
	case age < time.Hour:
		return "over half an hour ago"
	case age < 3*time.Hour:
		return "over an hour ago"
	case days < 1:
		return "a few hours ago"
	case days == 1:
		return "a day ago"
	case days <= 6:
		return "a few days ago"
	case days == 7:
		return "a week ago"
	case days <= 11:
		return "over a week ago"
	case days <= 14:
		return "two weeks ago"
	case days <= 30:
		return "over two weeks ago"
	default:
		return "over a month ago"
	}
}

// Percent renders a ratio already scaled to 0..100 with one decimal.
func Percent(v float64) string {
	return humanize.FormatFloat("#,###.#", v) + "%"
}

// ParseAmount reads an amount typed with grouping spaces and either a
// decimal comma or point, e.g. "1 500,25".
func ParseAmount(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, s)
	return strconv.ParseFloat(cleaned, 64)
}

// LastN returns the last n runes of s, or s when shorter.
func LastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
