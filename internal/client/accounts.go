// ABOUTME: Linked messenger account routes of the changex API
// ABOUTME: Listing, lookup, editing, removal and connect code generation

package client

import "context"

type accountEnvelope struct {
	Account Account `json:"account"`
}

type codeEnvelope struct {
	Code string `json:"code"`
}

// ListAccounts returns one page of linked accounts.
func (c *Client) ListAccounts(ctx context.Context, opts ListOptions) (*Page[Account], error) {
	return list[Account](ctx, c, "/tg/list", opts)
}

// AccountInfo returns a single account.
func (c *Client) AccountInfo(ctx context.Context, uid string) (*Account, error) {
	out, err := post[accountEnvelope](ctx, c, path("tg", uid, "info"), nil)
	if err != nil {
		return nil, err
	}
	return &out.Account, nil
}

// EditAccount updates an account's username and comment.
func (c *Client) EditAccount(ctx context.Context, uid string, edit AccountEdit) error {
	return exec(ctx, c, path("tg", uid, "edit"), edit)
}

// RemoveAccount unlinks an account.
func (c *Client) RemoveAccount(ctx context.Context, uid string) error {
	return exec(ctx, c, path("tg", uid, "remove"), nil)
}

// AccountConnectCode generates a code for linking a new account.
func (c *Client) AccountConnectCode(ctx context.Context) (string, error) {
	out, err := post[codeEnvelope](ctx, c, "/tg/generateCode", nil)
	if err != nil {
		return "", err
	}
	return out.Code, nil
}
