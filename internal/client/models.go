// ABOUTME: Wire types for changex API resources
// ABOUTME: Raw records exactly as the API returns them, before view mapping

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ListOptions are the filter and pagination parameters accepted by every
// list route. Zero values are omitted from the request body.
type ListOptions struct {
	Search       string         `json:"search,omitempty"`
	Filter       map[string]any `json:"filter,omitempty"`
	Sort         string         `json:"sort,omitempty"`
	Page         int            `json:"page,omitempty"`
	CountPerPage int            `json:"countPerPage,omitempty"`
}

// Page is one page of a list route response.
type Page[T any] struct {
	List       []T `json:"list"`
	Page       int `json:"page"`
	Offset     int `json:"offset"`
	TotalCount int `json:"totalCount"`
	LastPage   int `json:"lastPage"`
}

// Timestamp is an instant in epoch milliseconds. The API sends it either as
// a JSON number or as a string holding digits or an RFC 3339 time.
type Timestamp int64

// UnmarshalJSON accepts numbers, numeric strings, RFC 3339 strings and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = 0
		return nil
	}

	if data[0] != '"' {
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		*t = Timestamp(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = 0
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = Timestamp(ms)
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	*t = Timestamp(parsed.UnixMilli())
	return nil
}

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t == 0
}

// Time converts the timestamp to a time.Time, zero when unset.
func (t Timestamp) Time() time.Time {
	if t == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(t))
}

// Card is a payment card registered to one of the operator's devices.
type Card struct {
	UID                 string  `json:"uid"`
	Type                string  `json:"type"`
	Pan                 string  `json:"pan"`
	Bank                string  `json:"bank"`
	DeviceID            string  `json:"deviceId,omitempty"`
	DeviceName          string  `json:"deviceName"`
	DeviceComment       string  `json:"deviceComment"`
	IsDeviceOnline      bool    `json:"isDeviceOnline"`
	DeviceBatteryLevel  int     `json:"deviceBatteryLevel"`
	Comment             string  `json:"comment"`
	Status              string  `json:"status"`
	MaxDailyOrderSumUSD float64 `json:"maxDailyOrderSumUSD,omitempty"`
}

// Card status values.
const (
	CardStatusActive  = "active"
	CardStatusConnect = "connect"
	CardStatusStopped = "stopped"
)

// NewCard is the body of /cards/add.
type NewCard struct {
	Bank                string  `json:"bank"`
	Pan                 string  `json:"pan"`
	DeviceID            string  `json:"deviceId"`
	MaxDailyOrderSumUSD float64 `json:"maxDailyOrderSumUSD"`
	Comment             string  `json:"comment"`
}

// CardEdit is the body of /cards/{uid}/edit.
type CardEdit struct {
	Pan                 string  `json:"pan"`
	MaxDailyOrderSumUSD float64 `json:"maxDailyOrderSumUSD"`
	Comment             string  `json:"comment"`
}

// Bank is an issuing bank known to the server.
type Bank struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Device is a paired handset that services cards.
type Device struct {
	DeviceID     string `json:"deviceId"`
	Name         string `json:"name"`
	IsOnline     bool   `json:"isOnline"`
	BatteryLevel int    `json:"batteryLevel"`
	Model        string `json:"model"`
	Status       string `json:"status"`
	Comment      string `json:"comment"`
}

// Payment is an incoming payment. Disputes are payments with the dispute
// fields populated.
type Payment struct {
	PaymentID        string    `json:"paymentId"`
	Timestamp        Timestamp `json:"timestamp"`
	Amount           float64   `json:"amount"`
	WithdrawalAmount float64   `json:"withdrawalAmount"`
	Currency         string    `json:"currency"`
	CardType         string    `json:"cardType"`
	Card             string    `json:"card"`
	Status           string    `json:"status"`

	DisputeStartTimestamp Timestamp `json:"disputeStartTimestamp,omitempty"`
	DisputePaidTime       Timestamp `json:"disputePaidTime,omitempty"`
	DisputePaidAmount     float64   `json:"disputePaidAmount,omitempty"`
	DisputeStatus         string    `json:"disputeStatus,omitempty"`
	DisputeTimeoutAfter   Timestamp `json:"disputeTimeoutAfter,omitempty"`
	ReceiptURL            string    `json:"receiptURL,omitempty"`
}

// Bid is a payout request. Free bids may be taken; taken bids are
// confirmed with a receipt or cancelled.
type Bid struct {
	UID             string    `json:"uid"`
	Method          string    `json:"method"`
	Bank            string    `json:"bank"`
	Amount          float64   `json:"amount"`
	AmountUSD       float64   `json:"amountUSD"`
	Requisites      string    `json:"requisites,omitempty"`
	TakenTimestamp  Timestamp `json:"takenTimestamp,omitempty"`
	Status          string    `json:"status,omitempty"`
	BidTimeoutAfter Timestamp `json:"bidTimeoutAfter,omitempty"`
}

// Account is a messenger account linked to the operator.
type Account struct {
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Timestamp Timestamp `json:"timestamp"`
	Comment   string    `json:"comment"`
}

// AccountEdit is the body of /tg/{uid}/edit.
type AccountEdit struct {
	Username string `json:"username"`
	Comment  string `json:"comment"`
}

// Balance history directions.
const (
	DirectionDeposit    = "deposit"
	DirectionWithdrawal = "withdrawal"
)

// BalanceEntry is one balance history movement.
type BalanceEntry struct {
	Direction string    `json:"direction"`
	Timestamp Timestamp `json:"timestamp"`
	Comment   string    `json:"comment"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status,omitempty"`
}

// Stats is a dashboard or chart record. The API adds counters over time,
// so the record is kept open rather than fixed to a struct.
type Stats map[string]any

// Number returns the numeric value of key, or 0 when absent or not numeric.
func (s Stats) Number(key string) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// Profile is the operator record returned by /me.
type Profile map[string]any

// String returns the string value of key, or "".
func (p Profile) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}
