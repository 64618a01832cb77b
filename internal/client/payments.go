// ABOUTME: Payment and dispute routes of the changex API
// ABOUTME: Disputes are payments; approve and cancel return the updated payment

package client

import "context"

type paymentEnvelope struct {
	Payment Payment `json:"payment"`
}

type countEnvelope struct {
	Count int `json:"count"`
}

// ListPayments returns one page of payments.
func (c *Client) ListPayments(ctx context.Context, opts ListOptions) (*Page[Payment], error) {
	return list[Payment](ctx, c, "/payments/list", opts)
}

// ListDisputes returns one page of disputed payments.
func (c *Client) ListDisputes(ctx context.Context, opts ListOptions) (*Page[Payment], error) {
	return list[Payment](ctx, c, "/disputes/list", opts)
}

// PaymentInfo returns a single payment, including its dispute fields.
func (c *Client) PaymentInfo(ctx context.Context, id string) (*Payment, error) {
	out, err := post[paymentEnvelope](ctx, c, path("payments", id, "info"), nil)
	if err != nil {
		return nil, err
	}
	return &out.Payment, nil
}

// ApproveDispute approves a dispute and returns the updated payment.
func (c *Client) ApproveDispute(ctx context.Context, id string) (*Payment, error) {
	out, err := post[paymentEnvelope](ctx, c, path("disputes", id, "approve"), nil)
	if err != nil {
		return nil, err
	}
	return &out.Payment, nil
}

// CancelDispute rejects a dispute and returns the updated payment.
func (c *Client) CancelDispute(ctx context.Context, id string) (*Payment, error) {
	out, err := post[paymentEnvelope](ctx, c, path("disputes", id, "cancel"), nil)
	if err != nil {
		return nil, err
	}
	return &out.Payment, nil
}

// AwaitingDisputesCount returns how many disputes wait for a decision.
func (c *Client) AwaitingDisputesCount(ctx context.Context) (int, error) {
	out, err := post[countEnvelope](ctx, c, "/awaitingDisputes/count", nil)
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}
