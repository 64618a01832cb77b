// ABOUTME: Linked messenger account list controller
// ABOUTME: Edits are re-read from the server before replacing the listed record

package resources

import (
	"context"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/collection"
	"github.com/changexio/changex-console/internal/format"
)

// AccountsAPI is the subset of the API client used for accounts.
type AccountsAPI interface {
	ListAccounts(ctx context.Context, opts client.ListOptions) (*client.Page[client.Account], error)
	AccountInfo(ctx context.Context, uid string) (*client.Account, error)
	EditAccount(ctx context.Context, uid string, edit client.AccountEdit) error
	RemoveAccount(ctx context.Context, uid string) error
	AccountConnectCode(ctx context.Context) (string, error)
}

// AccountView is an account as shown in lists.
type AccountView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Date     string `json:"date"`
	Comment  string `json:"comment,omitempty"`
}

// Accounts is the linked account list.
type Accounts struct {
	*collection.Collection[client.Account, AccountView]
	api AccountsAPI
}

// NewAccounts creates an empty account list.
func NewAccounts(api AccountsAPI) *Accounts {
	return &Accounts{
		api: api,
		Collection: collection.New(collection.Config[client.Account, AccountView]{
			Name:  "accounts",
			Fetch: api.ListAccounts,
			ID:    func(a client.Account) string { return a.UID },
			View: func(a client.Account) AccountView {
				return AccountView{
					ID:       a.UID,
					Username: a.Username,
					Date:     format.Datetime(int64(a.Timestamp)),
					Comment:  a.Comment,
				}
			},
		}),
	}
}

// Info fetches a single account from the server.
func (a *Accounts) Info(ctx context.Context, uid string) (*client.Account, error) {
	return a.api.AccountInfo(ctx, uid)
}

// SaveEdit updates an account, then replaces the listed record with the
// server's current one.
func (a *Accounts) SaveEdit(ctx context.Context, uid string, edit client.AccountEdit) (client.Account, error) {
	return a.MutateOne(ctx, uid, func(ctx context.Context) (client.Account, error) {
		if err := a.api.EditAccount(ctx, uid, edit); err != nil {
			return client.Account{}, err
		}
		return deref(a.api.AccountInfo(ctx, uid))
	})
}

// Remove drops the account locally and unlinks it in the background.
func (a *Accounts) Remove(ctx context.Context, uid string) error {
	a.RemoveOne(ctx, uid, a.api.RemoveAccount)
	return nil
}

// ConnectCode generates a code for linking another account.
func (a *Accounts) ConnectCode(ctx context.Context) (string, error) {
	return a.api.AccountConnectCode(ctx)
}

// Table returns the account list as a Table.
func (a *Accounts) Table() Table {
	return &table[client.Account, AccountView]{
		Collection: a.Collection,
		name:       "accounts",
		title:      "Accounts",
		columns:    []string{"ID", "Account", "Linked", "Comment"},
		row: func(v AccountView) []string {
			return []string{v.ID, v.Username, v.Date, v.Comment}
		},
		remove: a.Remove,
	}
}
