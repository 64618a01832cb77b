// ABOUTME: Card list controller with bank lookup and on/off switching
// ABOUTME: Switching on shows "connect" until the server confirms

package resources

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/collection"
	"github.com/changexio/changex-console/internal/format"
)

// CardsAPI is the subset of the API client used for cards.
type CardsAPI interface {
	ListCards(ctx context.Context, opts client.ListOptions) (*client.Page[client.Card], error)
	CardInfo(ctx context.Context, uid string) (*client.Card, error)
	AddCard(ctx context.Context, card client.NewCard) (*client.Card, error)
	EditCard(ctx context.Context, uid string, edit client.CardEdit) (*client.Card, error)
	TrashCard(ctx context.Context, uid string) error
	CardOn(ctx context.Context, uid string) error
	CardOff(ctx context.Context, uid string) error
	Banks(ctx context.Context) ([]client.Bank, error)
}

// CardView is a card as shown in lists.
type CardView struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	PanTail       string `json:"pan_tail"`
	BankSlug      string `json:"bank_slug"`
	BankName      string `json:"bank_name"`
	DeviceName    string `json:"device_name"`
	DeviceComment string `json:"device_comment,omitempty"`
	DeviceOnline  bool   `json:"device_online"`
	DeviceBattery int    `json:"device_battery"`
	Comment       string `json:"comment,omitempty"`
	Status        string `json:"status"`
	Switched      bool   `json:"switched"`
}

// defaultBanks names the banks known before the server list is loaded.
var defaultBanks = []client.Bank{
	{Slug: "sber", Name: "Sberbank"},
	{Slug: "raiff", Name: "Raiffeisen"},
	{Slug: "tinkoff", Name: "Tinkoff"},
	{Slug: "alpha", Name: "Alfa-Bank"},
}

// Cards is the card list.
type Cards struct {
	*collection.Collection[client.Card, CardView]
	api CardsAPI

	mu    sync.RWMutex
	banks []client.Bank
}

// NewCards creates an empty card list.
func NewCards(api CardsAPI) *Cards {
	c := &Cards{api: api, banks: defaultBanks}
	c.Collection = collection.New(collection.Config[client.Card, CardView]{
		Name:  "cards",
		Fetch: api.ListCards,
		ID:    func(card client.Card) string { return card.UID },
		View:  c.view,
	})
	return c
}

func (c *Cards) view(card client.Card) CardView {
	return CardView{
		ID:            card.UID,
		Type:          card.Type,
		PanTail:       format.LastN(card.Pan, 4),
		BankSlug:      card.Bank,
		BankName:      c.BankName(card.Bank),
		DeviceName:    card.DeviceName,
		DeviceComment: card.DeviceComment,
		DeviceOnline:  card.IsDeviceOnline,
		DeviceBattery: card.DeviceBatteryLevel,
		Comment:       card.Comment,
		Status:        card.Status,
		Switched:      card.Status == client.CardStatusActive,
	}
}

// BankName resolves a bank slug, falling back to the slug itself.
func (c *Cards) BankName(slug string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.banks {
		if b.Slug == slug {
			return b.Name
		}
	}
	return slug
}

// LoadBanks replaces the bank table with the server's list.
func (c *Cards) LoadBanks(ctx context.Context) ([]client.Bank, error) {
	banks, err := c.api.Banks(ctx)
	if err != nil {
		return nil, err
	}
	if len(banks) > 0 {
		c.mu.Lock()
		c.banks = banks
		c.mu.Unlock()
		c.InvalidateViews()
	}
	return banks, nil
}

// Info fetches a single card from the server.
func (c *Cards) Info(ctx context.Context, uid string) (*client.Card, error) {
	return c.api.CardInfo(ctx, uid)
}

// Exists reports whether any card matches search.
func (c *Cards) Exists(ctx context.Context, search string) (bool, error) {
	page, err := c.api.ListCards(ctx, client.ListOptions{Search: search})
	if err != nil {
		return false, err
	}
	return len(page.List) > 0, nil
}

// ExistsElsewhere reports whether the first card matching search is a card
// other than uid. Used to reject duplicate numbers while editing.
func (c *Cards) ExistsElsewhere(ctx context.Context, search, uid string) (bool, error) {
	page, err := c.api.ListCards(ctx, client.ListOptions{Search: search})
	if err != nil {
		return false, err
	}
	return len(page.List) > 0 && page.List[0].UID != uid, nil
}

// Create registers a card and puts the server's record at the head of the
// list.
func (c *Cards) Create(ctx context.Context, card client.NewCard) (*client.Card, error) {
	created, err := c.api.AddCard(ctx, card)
	if err != nil {
		return nil, err
	}
	c.Prepend(*created)
	return created, nil
}

// SaveEdit updates a card and replaces it with the server's record.
func (c *Cards) SaveEdit(ctx context.Context, uid string, edit client.CardEdit) (client.Card, error) {
	return c.MutateOne(ctx, uid, func(ctx context.Context) (client.Card, error) {
		card, err := c.api.EditCard(ctx, uid, edit)
		if err != nil {
			return client.Card{}, err
		}
		return *card, nil
	})
}

// Remove drops the card locally and deletes it in the background.
func (c *Cards) Remove(ctx context.Context, uid string) error {
	c.RemoveOne(ctx, uid, c.api.TrashCard)
	return nil
}

// Toggle flips a card. Switching off marks it "stopped" only after the
// server confirms. Switching on marks it "connect" first and "active" once
// confirmed; a failed switch-on leaves it in "connect".
func (c *Cards) Toggle(ctx context.Context, uid string, isSwitched bool) error {
	if isSwitched {
		if err := c.api.CardOff(ctx, uid); err != nil {
			return err
		}
		c.setStatus(uid, client.CardStatusStopped)
		return nil
	}

	c.setStatus(uid, client.CardStatusConnect)
	if err := c.api.CardOn(ctx, uid); err != nil {
		return err
	}
	c.setStatus(uid, client.CardStatusActive)
	return nil
}

// ToggleByID flips a loaded card based on its current status.
func (c *Cards) ToggleByID(ctx context.Context, uid string) error {
	card, err := c.Get(uid)
	if err != nil {
		return err
	}
	return c.Toggle(ctx, uid, card.Status == client.CardStatusActive)
}

func (c *Cards) setStatus(uid, status string) {
	c.Update(uid, func(card *client.Card) { card.Status = status })
}

// Table returns the card list as a Table.
func (c *Cards) Table() Table {
	return &table[client.Card, CardView]{
		Collection: c.Collection,
		name:       "cards",
		title:      "Cards",
		columns:    []string{"ID", "Card", "Bank", "Device", "Online", "Status", "Comment"},
		row: func(v CardView) []string {
			return []string{v.ID, v.Type + " *" + v.PanTail, v.BankName, v.DeviceName, onlineLabel(v.DeviceOnline, v.DeviceBattery), v.Status, v.Comment}
		},
		remove: c.Remove,
		toggle: c.ToggleByID,
	}
}

func onlineLabel(online bool, battery int) string {
	if !online {
		return "offline"
	}
	return "online " + strconv.Itoa(battery) + "%"
}

// ParseLimit reads a daily limit typed with grouping spaces, e.g. "1 500".
func ParseLimit(s string) (float64, error) {
	v, err := format.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("invalid limit %q: %w", s, err)
	}
	return v, nil
}
