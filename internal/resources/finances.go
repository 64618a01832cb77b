// ABOUTME: Balance history list controller
// ABOUTME: Deposits and withdrawals are filtered views over one list

package resources

import (
	"context"
	"strconv"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/collection"
	"github.com/changexio/changex-console/internal/format"
)

// FinancesAPI is the subset of the API client used for balance history.
type FinancesAPI interface {
	BalanceHistory(ctx context.Context, opts client.ListOptions) (*client.Page[client.BalanceEntry], error)
}

// BalanceView is a balance movement as shown in lists.
type BalanceView struct {
	Direction string  `json:"direction"`
	Date      string  `json:"date"`
	Comment   string  `json:"comment,omitempty"`
	Amount    string  `json:"amount"`
	Value     float64 `json:"value"`
	Status    string  `json:"status,omitempty"`
}

// Finances is the balance history list.
type Finances struct {
	*collection.Collection[client.BalanceEntry, BalanceView]
}

// NewFinances creates an empty balance history.
func NewFinances(api FinancesAPI) *Finances {
	return &Finances{
		Collection: collection.New(collection.Config[client.BalanceEntry, BalanceView]{
			Name:  "finances",
			Fetch: api.BalanceHistory,
			ID:    balanceEntryID,
			View: func(e client.BalanceEntry) BalanceView {
				return BalanceView{
					Direction: e.Direction,
					Date:      format.Datetime(int64(e.Timestamp)),
					Comment:   e.Comment,
					Amount:    format.Amount(e.Amount),
					Value:     e.Amount,
					Status:    e.Status,
				}
			},
		}),
	}
}

// balanceEntryID identifies an entry; the API assigns none.
func balanceEntryID(e client.BalanceEntry) string {
	return e.Direction + ":" + strconv.FormatInt(int64(e.Timestamp), 10)
}

// Deposits returns the incoming movements.
func (f *Finances) Deposits() []BalanceView {
	return f.Select(func(e client.BalanceEntry) bool { return e.Direction == client.DirectionDeposit })
}

// Withdrawals returns the outgoing movements.
func (f *Finances) Withdrawals() []BalanceView {
	return f.Select(func(e client.BalanceEntry) bool { return e.Direction == client.DirectionWithdrawal })
}

// Table returns the balance history as a Table.
func (f *Finances) Table() Table {
	return &table[client.BalanceEntry, BalanceView]{
		Collection: f.Collection,
		name:       "finances",
		title:      "Finances",
		columns:    []string{"Direction", "Date", "Amount", "Status", "Comment"},
		row:        BalanceRow,
	}
}

// BalanceRow renders a movement in the Finances table column order.
func BalanceRow(v BalanceView) []string {
	return []string{v.Direction, v.Date, v.Amount, v.Status, v.Comment}
}
