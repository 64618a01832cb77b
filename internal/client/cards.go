// ABOUTME: Card routes of the changex API
// ABOUTME: Listing, lookup, creation, editing, removal and on/off switching

package client

import "context"

type cardEnvelope struct {
	Card Card `json:"card"`
}

type banksEnvelope struct {
	Banks []Bank `json:"banks"`
}

// ListCards returns one page of cards.
func (c *Client) ListCards(ctx context.Context, opts ListOptions) (*Page[Card], error) {
	return list[Card](ctx, c, "/cards/list", opts)
}

// CardInfo returns a single card.
func (c *Client) CardInfo(ctx context.Context, uid string) (*Card, error) {
	out, err := post[cardEnvelope](ctx, c, path("cards", uid, "info"), nil)
	if err != nil {
		return nil, err
	}
	return &out.Card, nil
}

// AddCard registers a new card and returns it as stored by the server.
func (c *Client) AddCard(ctx context.Context, card NewCard) (*Card, error) {
	out, err := post[cardEnvelope](ctx, c, "/cards/add", card)
	if err != nil {
		return nil, err
	}
	return &out.Card, nil
}

// EditCard updates a card and returns the server's version of it.
func (c *Client) EditCard(ctx context.Context, uid string, edit CardEdit) (*Card, error) {
	out, err := post[cardEnvelope](ctx, c, path("cards", uid, "edit"), edit)
	if err != nil {
		return nil, err
	}
	return &out.Card, nil
}

// TrashCard deletes a card.
func (c *Client) TrashCard(ctx context.Context, uid string) error {
	return exec(ctx, c, path("cards", uid, "trash"), nil)
}

// CardOn switches a card on.
func (c *Client) CardOn(ctx context.Context, uid string) error {
	return exec(ctx, c, path("cards", uid, "on"), nil)
}

// CardOff switches a card off.
func (c *Client) CardOff(ctx context.Context, uid string) error {
	return exec(ctx, c, path("cards", uid, "off"), nil)
}

// Banks lists the banks cards may be issued by. The route is public.
func (c *Client) Banks(ctx context.Context) ([]Bank, error) {
	out, err := getPublic[banksEnvelope](ctx, c, "/server/banks")
	if err != nil {
		return nil, err
	}
	return out.Banks, nil
}
