// ABOUTME: Payment and dispute list controllers
// ABOUTME: Dispute decisions replace the listed payment with the server's record

package resources

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/collection"
	"github.com/changexio/changex-console/internal/format"
)

// PaymentsAPI is the subset of the API client used for payments.
type PaymentsAPI interface {
	ListPayments(ctx context.Context, opts client.ListOptions) (*client.Page[client.Payment], error)
}

// DisputesAPI is the subset of the API client used for disputes.
type DisputesAPI interface {
	ListDisputes(ctx context.Context, opts client.ListOptions) (*client.Page[client.Payment], error)
	PaymentInfo(ctx context.Context, id string) (*client.Payment, error)
	ApproveDispute(ctx context.Context, id string) (*client.Payment, error)
	CancelDispute(ctx context.Context, id string) (*client.Payment, error)
	AwaitingDisputesCount(ctx context.Context) (int, error)
}

// PaymentView is a payment as shown in lists.
type PaymentView struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Age      string `json:"age"`
	Sum      string `json:"sum"`
	Debit    string `json:"debit"`
	Currency string `json:"currency"`
	CardType string `json:"card_type"`
	CardTail string `json:"card_tail"`
	Status   string `json:"status"`
}

// DisputeView is a disputed payment as shown in lists.
type DisputeView struct {
	ID           string `json:"id"`
	DisputeStart string `json:"dispute_start"`
	Age          string `json:"age"`
	PaidAt       string `json:"paid_at"`
	Sum          string `json:"sum"`
	Paid         string `json:"paid"`
	Currency     string `json:"currency"`
	CardType     string `json:"card_type"`
	CardTail     string `json:"card_tail"`
	Status       string `json:"status"`
	TimeoutAfter string `json:"timeout_after,omitempty"`
	Receipt      string `json:"receipt,omitempty"`
}

// cardTail drops the mask character the API prefixes card tails with.
func cardTail(card string) string {
	return strings.TrimLeft(card, "*")
}

// Payments is the payment list.
type Payments struct {
	*collection.Collection[client.Payment, PaymentView]
}

// NewPayments creates an empty payment list.
func NewPayments(api PaymentsAPI) *Payments {
	return &Payments{
		Collection: collection.New(collection.Config[client.Payment, PaymentView]{
			Name:  "payments",
			Fetch: api.ListPayments,
			ID:    func(p client.Payment) string { return p.PaymentID },
			View: func(p client.Payment) PaymentView {
				return PaymentView{
					ID:       p.PaymentID,
					Date:     format.Datetime(int64(p.Timestamp)),
					Age:      format.Since(int64(p.Timestamp), now()),
					Sum:      format.Amount(p.Amount),
					Debit:    format.Amount(p.WithdrawalAmount),
					Currency: p.Currency,
					CardType: p.CardType,
					CardTail: cardTail(p.Card),
					Status:   p.Status,
				}
			},
		}),
	}
}

// Table returns the payment list as a Table.
func (p *Payments) Table() Table {
	return &table[client.Payment, PaymentView]{
		Collection: p.Collection,
		name:       "payments",
		title:      "Payments",
		columns:    []string{"ID", "Date", "Age", "Sum", "Debit", "Card", "Status"},
		row: func(v PaymentView) []string {
			return []string{v.ID, v.Date, v.Age, v.Sum + " " + v.Currency, v.Debit + " " + v.Currency, v.CardType + " " + v.CardTail, v.Status}
		},
	}
}

// Disputes is the dispute list.
type Disputes struct {
	*collection.Collection[client.Payment, DisputeView]
	api      DisputesAPI
	awaiting atomic.Int64
}

// NewDisputes creates an empty dispute list.
func NewDisputes(api DisputesAPI) *Disputes {
	return &Disputes{
		api: api,
		Collection: collection.New(collection.Config[client.Payment, DisputeView]{
			Name:  "disputes",
			Fetch: api.ListDisputes,
			ID:    func(p client.Payment) string { return p.PaymentID },
			View:  disputeView,
		}),
	}
}

func disputeView(p client.Payment) DisputeView {
	v := DisputeView{
		ID:           p.PaymentID,
		DisputeStart: format.Datetime(int64(p.DisputeStartTimestamp)),
		Age:          format.Since(int64(p.Timestamp), now()),
		Sum:          format.Amount(p.Amount),
		Paid:         format.Amount(p.DisputePaidAmount),
		Currency:     p.Currency,
		CardType:     p.CardType,
		CardTail:     cardTail(p.Card),
		Status:       p.DisputeStatus,
		Receipt:      p.ReceiptURL,
	}
	if !p.DisputePaidTime.IsZero() {
		v.PaidAt = format.DatetimeIn(int64(p.DisputePaidTime), format.Moscow) + " MSK"
	}
	if !p.DisputeTimeoutAfter.IsZero() {
		v.TimeoutAfter = format.Datetime(int64(p.DisputeTimeoutAfter))
	}
	return v
}

// Info fetches a single disputed payment from the server.
func (d *Disputes) Info(ctx context.Context, id string) (*client.Payment, error) {
	return d.api.PaymentInfo(ctx, id)
}

// Approve accepts a dispute and replaces it with the returned payment.
func (d *Disputes) Approve(ctx context.Context, id string) (client.Payment, error) {
	return d.MutateOne(ctx, id, func(ctx context.Context) (client.Payment, error) {
		return deref(d.api.ApproveDispute(ctx, id))
	})
}

// Cancel rejects a dispute and replaces it with the returned payment.
func (d *Disputes) Cancel(ctx context.Context, id string) (client.Payment, error) {
	return d.MutateOne(ctx, id, func(ctx context.Context) (client.Payment, error) {
		return deref(d.api.CancelDispute(ctx, id))
	})
}

// RefreshAwaiting reloads the number of disputes waiting for a decision.
func (d *Disputes) RefreshAwaiting(ctx context.Context) (int, error) {
	n, err := d.api.AwaitingDisputesCount(ctx)
	if err != nil {
		return 0, err
	}
	d.awaiting.Store(int64(n))
	return n, nil
}

// Awaiting returns the last loaded awaiting count.
func (d *Disputes) Awaiting() int {
	return int(d.awaiting.Load())
}

// Table returns the dispute list as a Table.
func (d *Disputes) Table() Table {
	return &table[client.Payment, DisputeView]{
		Collection: d.Collection,
		name:       "disputes",
		title:      "Disputes",
		columns:    []string{"ID", "Opened", "Age", "Sum", "Paid", "Paid at", "Card", "Status"},
		row: func(v DisputeView) []string {
			return []string{v.ID, v.DisputeStart, v.Age, v.Sum + " " + v.Currency, v.Paid + " " + v.Currency, v.PaidAt, v.CardType + " " + v.CardTail, v.Status}
		},
	}
}

// deref turns an API (pointer, error) pair into a value result.
func deref[T any](v *T, err error) (T, error) {
	if err != nil || v == nil {
		var zero T
		return zero, err
	}
	return *v, nil
}
