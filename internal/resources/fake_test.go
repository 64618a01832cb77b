// ABOUTME: In-memory API double shared by resource controller tests
// ABOUTME: Records calls and serves canned records per route

package resources

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/changexio/changex-console/internal/client"
)

var errRejected = errors.New("rejected")

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	cards      []client.Card
	devices    []client.Device
	payments   []client.Payment
	freeBids   []client.Bid
	takenBids  []client.Bid
	accounts   []client.Account
	balance    []client.BalanceEntry
	banks      []client.Bank
	stats      client.Stats
	chart      client.Stats
	awaiting   int
	pairStatus string

	failOn map[string]error
	// onCall runs inside every call, before the result is produced.
	onCall func(name string)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failOn: map[string]error{}}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	err := f.failOn[name]
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook(name)
	}
	return err
}

func (f *fakeAPI) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func page[T any](items []T) *client.Page[T] {
	return &client.Page[T]{List: append([]T{}, items...), Page: 1, LastPage: 1, TotalCount: len(items)}
}

func (f *fakeAPI) ListCards(ctx context.Context, opts client.ListOptions) (*client.Page[client.Card], error) {
	if err := f.record("ListCards"); err != nil {
		return nil, err
	}
	if opts.Search != "" {
		var matched []client.Card
		for _, c := range f.cards {
			if c.Pan == opts.Search {
				matched = append(matched, c)
			}
		}
		return page(matched), nil
	}
	return page(f.cards), nil
}

func (f *fakeAPI) CardInfo(ctx context.Context, uid string) (*client.Card, error) {
	if err := f.record("CardInfo"); err != nil {
		return nil, err
	}
	for _, c := range f.cards {
		if c.UID == uid {
			return &c, nil
		}
	}
	return nil, errRejected
}

func (f *fakeAPI) AddCard(ctx context.Context, card client.NewCard) (*client.Card, error) {
	if err := f.record("AddCard"); err != nil {
		return nil, err
	}
	return &client.Card{UID: "new", Pan: card.Pan, Bank: card.Bank, Status: client.CardStatusStopped}, nil
}

func (f *fakeAPI) EditCard(ctx context.Context, uid string, edit client.CardEdit) (*client.Card, error) {
	if err := f.record("EditCard"); err != nil {
		return nil, err
	}
	return &client.Card{UID: uid, Pan: edit.Pan, Comment: edit.Comment, MaxDailyOrderSumUSD: edit.MaxDailyOrderSumUSD}, nil
}

func (f *fakeAPI) TrashCard(ctx context.Context, uid string) error { return f.record("TrashCard") }
func (f *fakeAPI) CardOn(ctx context.Context, uid string) error    { return f.record("CardOn") }
func (f *fakeAPI) CardOff(ctx context.Context, uid string) error   { return f.record("CardOff") }

func (f *fakeAPI) Banks(ctx context.Context) ([]client.Bank, error) {
	if err := f.record("Banks"); err != nil {
		return nil, err
	}
	return f.banks, nil
}

func (f *fakeAPI) ListDevices(ctx context.Context, opts client.ListOptions) (*client.Page[client.Device], error) {
	if err := f.record("ListDevices"); err != nil {
		return nil, err
	}
	return page(f.devices), nil
}

func (f *fakeAPI) DeviceInfo(ctx context.Context, id string) (*client.Device, error) {
	if err := f.record("DeviceInfo"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.devices {
		if d.DeviceID == id {
			return &d, nil
		}
	}
	return nil, errRejected
}

func (f *fakeAPI) RenameDevice(ctx context.Context, id, name string) error {
	if err := f.record("RenameDevice"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.devices {
		if f.devices[i].DeviceID == id {
			f.devices[i].Name = name
		}
	}
	return nil
}

func (f *fakeAPI) EditDeviceComment(ctx context.Context, id, comment string) error {
	if err := f.record("EditDeviceComment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.devices {
		if f.devices[i].DeviceID == id {
			f.devices[i].Comment = comment
		}
	}
	return nil
}

func (f *fakeAPI) HideDevice(ctx context.Context, id string) error { return f.record("HideDevice") }

func (f *fakeAPI) DeviceFilterOptions(ctx context.Context) ([]client.Device, error) {
	if err := f.record("DeviceFilterOptions"); err != nil {
		return nil, err
	}
	return f.devices, nil
}

func (f *fakeAPI) TempToken(ctx context.Context) (string, error) {
	if err := f.record("TempToken"); err != nil {
		return "", err
	}
	return "qr-payload", nil
}

func (f *fakeAPI) CheckTempToken(ctx context.Context) (string, error) {
	if err := f.record("CheckTempToken"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairStatus, nil
}

func (f *fakeAPI) ListPayments(ctx context.Context, opts client.ListOptions) (*client.Page[client.Payment], error) {
	if err := f.record("ListPayments"); err != nil {
		return nil, err
	}
	return page(f.payments), nil
}

func (f *fakeAPI) ListDisputes(ctx context.Context, opts client.ListOptions) (*client.Page[client.Payment], error) {
	if err := f.record("ListDisputes"); err != nil {
		return nil, err
	}
	return page(f.payments), nil
}

func (f *fakeAPI) PaymentInfo(ctx context.Context, id string) (*client.Payment, error) {
	if err := f.record("PaymentInfo"); err != nil {
		return nil, err
	}
	return &client.Payment{PaymentID: id}, nil
}

func (f *fakeAPI) ApproveDispute(ctx context.Context, id string) (*client.Payment, error) {
	if err := f.record("ApproveDispute"); err != nil {
		return nil, err
	}
	return &client.Payment{PaymentID: id, DisputeStatus: "approved"}, nil
}

func (f *fakeAPI) CancelDispute(ctx context.Context, id string) (*client.Payment, error) {
	if err := f.record("CancelDispute"); err != nil {
		return nil, err
	}
	return &client.Payment{PaymentID: id, DisputeStatus: "cancelled"}, nil
}

func (f *fakeAPI) AwaitingDisputesCount(ctx context.Context) (int, error) {
	if err := f.record("AwaitingDisputesCount"); err != nil {
		return 0, err
	}
	return f.awaiting, nil
}

func (f *fakeAPI) ListFreeBids(ctx context.Context, opts client.ListOptions) (*client.Page[client.Bid], error) {
	if err := f.record("ListFreeBids"); err != nil {
		return nil, err
	}
	return page(f.freeBids), nil
}

func (f *fakeAPI) ListTakenBids(ctx context.Context, opts client.ListOptions) (*client.Page[client.Bid], error) {
	if err := f.record("ListTakenBids"); err != nil {
		return nil, err
	}
	return page(f.takenBids), nil
}

func (f *fakeAPI) TakeBid(ctx context.Context, uid string) error   { return f.record("TakeBid") }
func (f *fakeAPI) CancelBid(ctx context.Context, uid string) error { return f.record("CancelBid") }

func (f *fakeAPI) AddBidReceipt(ctx context.Context, uid, filename string, receipt []byte) (*client.Bid, error) {
	if err := f.record("AddBidReceipt"); err != nil {
		return nil, err
	}
	return &client.Bid{UID: uid, Status: "confirmed"}, nil
}

func (f *fakeAPI) ListAccounts(ctx context.Context, opts client.ListOptions) (*client.Page[client.Account], error) {
	if err := f.record("ListAccounts"); err != nil {
		return nil, err
	}
	return page(f.accounts), nil
}

func (f *fakeAPI) AccountInfo(ctx context.Context, uid string) (*client.Account, error) {
	if err := f.record("AccountInfo"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.UID == uid {
			return &a, nil
		}
	}
	return nil, errRejected
}

func (f *fakeAPI) EditAccount(ctx context.Context, uid string, edit client.AccountEdit) error {
	if err := f.record("EditAccount"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts {
		if f.accounts[i].UID == uid {
			f.accounts[i].Username = edit.Username
			f.accounts[i].Comment = edit.Comment
		}
	}
	return nil
}

func (f *fakeAPI) RemoveAccount(ctx context.Context, uid string) error {
	return f.record("RemoveAccount")
}

func (f *fakeAPI) AccountConnectCode(ctx context.Context) (string, error) {
	if err := f.record("AccountConnectCode"); err != nil {
		return "", err
	}
	return "CODE42", nil
}

func (f *fakeAPI) BalanceHistory(ctx context.Context, opts client.ListOptions) (*client.Page[client.BalanceEntry], error) {
	if err := f.record("BalanceHistory"); err != nil {
		return nil, err
	}
	return page(f.balance), nil
}

func (f *fakeAPI) Dashboard(ctx context.Context) (client.Stats, error) {
	return f.stats, f.record("Dashboard")
}

func (f *fakeAPI) DashboardForDate(ctx context.Context, day time.Time) (client.Stats, error) {
	return f.stats, f.record("DashboardForDate")
}

func (f *fakeAPI) DashboardForRange(ctx context.Context, from, to time.Time) (client.Stats, error) {
	return f.stats, f.record("DashboardForRange")
}

func (f *fakeAPI) Chart(ctx context.Context) (client.Stats, error) {
	return f.chart, f.record("Chart")
}

func (f *fakeAPI) ChartForDate(ctx context.Context, day time.Time) (client.Stats, error) {
	return f.chart, f.record("ChartForDate")
}

func (f *fakeAPI) Me(ctx context.Context) (client.Profile, error) {
	return client.Profile{"name": "operator"}, f.record("Me")
}

func (f *fakeAPI) Wallet(ctx context.Context) (string, error) {
	return "TWallet", f.record("Wallet")
}

func (f *fakeAPI) LatestApp(ctx context.Context) (string, error) {
	return "https://example.invalid/app.apk", f.record("LatestApp")
}

var _ API = (*fakeAPI)(nil)
