// ABOUTME: Free and taken bid list controllers
// ABOUTME: Taking or cancelling drops the bid locally once the server agrees

package resources

import (
	"context"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/collection"
	"github.com/changexio/changex-console/internal/format"
)

// BidsAPI is the subset of the API client used for bids.
type BidsAPI interface {
	ListFreeBids(ctx context.Context, opts client.ListOptions) (*client.Page[client.Bid], error)
	ListTakenBids(ctx context.Context, opts client.ListOptions) (*client.Page[client.Bid], error)
	TakeBid(ctx context.Context, uid string) error
	CancelBid(ctx context.Context, uid string) error
	AddBidReceipt(ctx context.Context, uid, filename string, receipt []byte) (*client.Bid, error)
}

// FreeBidView is an open bid as shown in lists.
type FreeBidView struct {
	ID        string `json:"id"`
	Method    string `json:"method"`
	Bank      string `json:"bank"`
	Amount    string `json:"amount"`
	AmountUSD string `json:"amount_usd"`
}

// TakenBidView is a bid taken by the operator.
type TakenBidView struct {
	FreeBidView
	Requisites   string `json:"requisites"`
	TakenAt      string `json:"taken_at"`
	Age          string `json:"age"`
	Status       string `json:"status"`
	TimeoutAfter string `json:"timeout_after,omitempty"`
}

func freeBidView(b client.Bid) FreeBidView {
	return FreeBidView{
		ID:        b.UID,
		Method:    b.Method,
		Bank:      b.Bank,
		Amount:    format.Amount(b.Amount),
		AmountUSD: format.Amount(b.AmountUSD),
	}
}

func takenBidView(b client.Bid) TakenBidView {
	v := TakenBidView{
		FreeBidView: freeBidView(b),
		Requisites:  b.Requisites,
		TakenAt:     format.Datetime(int64(b.TakenTimestamp)),
		Age:         format.Since(int64(b.TakenTimestamp), now()),
		Status:      b.Status,
	}
	if !b.BidTimeoutAfter.IsZero() {
		v.TimeoutAfter = format.Datetime(int64(b.BidTimeoutAfter))
	}
	return v
}

func bidID(b client.Bid) string { return b.UID }

// Bids holds the free and taken bid lists.
type Bids struct {
	Free  *collection.Collection[client.Bid, FreeBidView]
	Taken *collection.Collection[client.Bid, TakenBidView]
	api   BidsAPI
}

// NewBids creates empty bid lists.
func NewBids(api BidsAPI) *Bids {
	return &Bids{
		api: api,
		Free: collection.New(collection.Config[client.Bid, FreeBidView]{
			Name:  "free bids",
			Fetch: api.ListFreeBids,
			ID:    bidID,
			View:  freeBidView,
		}),
		Taken: collection.New(collection.Config[client.Bid, TakenBidView]{
			Name:  "taken bids",
			Fetch: api.ListTakenBids,
			ID:    bidID,
			View:  takenBidView,
		}),
	}
}

// HasItems reports whether either list holds a bid.
func (b *Bids) HasItems() bool {
	return b.Free.HasItems() || b.Taken.HasItems()
}

// Take assigns a free bid to the operator and drops it from the free list.
func (b *Bids) Take(ctx context.Context, uid string) error {
	if err := b.api.TakeBid(ctx, uid); err != nil {
		return err
	}
	b.Free.Drop(uid)
	return nil
}

// CancelTaken releases a taken bid and drops it from the taken list.
func (b *Bids) CancelTaken(ctx context.Context, uid string) error {
	if err := b.api.CancelBid(ctx, uid); err != nil {
		return err
	}
	b.Taken.Drop(uid)
	return nil
}

// Confirm uploads the receipt for a taken bid and replaces it with the
// server's record.
func (b *Bids) Confirm(ctx context.Context, uid, filename string, receipt []byte) (client.Bid, error) {
	return b.Taken.MutateOne(ctx, uid, func(ctx context.Context) (client.Bid, error) {
		return deref(b.api.AddBidReceipt(ctx, uid, filename, receipt))
	})
}

// FreeTable returns the free bid list as a Table.
func (b *Bids) FreeTable() Table {
	return &table[client.Bid, FreeBidView]{
		Collection: b.Free,
		name:       "bids",
		title:      "Free bids",
		columns:    []string{"ID", "Method", "Bank", "Amount", "USDT"},
		row: func(v FreeBidView) []string {
			return []string{v.ID, v.Method, v.Bank, v.Amount, v.AmountUSD}
		},
	}
}

// TakenTable returns the taken bid list as a Table.
func (b *Bids) TakenTable() Table {
	return &table[client.Bid, TakenBidView]{
		Collection: b.Taken,
		name:       "taken-bids",
		title:      "Taken bids",
		columns:    []string{"ID", "Method", "Bank", "Requisites", "Amount", "USDT", "Taken", "Status"},
		row: func(v TakenBidView) []string {
			return []string{v.ID, v.Method, v.Bank, v.Requisites, v.Amount, v.AmountUSD, v.Age, v.Status}
		},
		remove: b.CancelTaken,
	}
}
