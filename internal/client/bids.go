// ABOUTME: Bid routes of the changex API
// ABOUTME: Free and taken bid lists, taking, cancelling and receipt upload

package client

import "context"

type bidEnvelope struct {
	Bid Bid `json:"bid"`
}

// ListFreeBids returns one page of bids open for taking.
func (c *Client) ListFreeBids(ctx context.Context, opts ListOptions) (*Page[Bid], error) {
	return list[Bid](ctx, c, "/bids/free/list", opts)
}

// ListTakenBids returns one page of bids taken by the operator.
func (c *Client) ListTakenBids(ctx context.Context, opts ListOptions) (*Page[Bid], error) {
	return list[Bid](ctx, c, "/bids/taken/list", opts)
}

// TakeBid assigns a free bid to the operator.
func (c *Client) TakeBid(ctx context.Context, uid string) error {
	return exec(ctx, c, path("bids", uid, "take"), nil)
}

// CancelBid releases a taken bid.
func (c *Client) CancelBid(ctx context.Context, uid string) error {
	return exec(ctx, c, path("bids", uid, "cancel"), nil)
}

// AddBidReceipt uploads the payment receipt for a taken bid and returns
// the updated bid.
func (c *Client) AddBidReceipt(ctx context.Context, uid, filename string, receipt []byte) (*Bid, error) {
	body, err := multipartFile("receipt", filename, receipt)
	if err != nil {
		return nil, err
	}
	out, err := post[bidEnvelope](ctx, c, path("bids", uid, "addReceipt"), body)
	if err != nil {
		return nil, err
	}
	return &out.Bid, nil
}
