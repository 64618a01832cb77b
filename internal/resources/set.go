// ABOUTME: All resource controllers built over one API client
// ABOUTME: Table lookup by name for the CLI and the console menu

package resources

import "github.com/changexio/changex-console/internal/client"

// API is everything the resource controllers need from the client.
type API interface {
	CardsAPI
	DevicesAPI
	PaymentsAPI
	DisputesAPI
	BidsAPI
	AccountsAPI
	FinancesAPI
	DashboardAPI
	ProfileAPI
}

var _ API = (*client.Client)(nil)

// Set holds one controller per resource.
type Set struct {
	Cards     *Cards
	Devices   *Devices
	Payments  *Payments
	Disputes  *Disputes
	Bids      *Bids
	Accounts  *Accounts
	Finances  *Finances
	Dashboard *Dashboard
	Profile   *Profile

	tables []Table
}

// NewSet builds every controller over api.
func NewSet(api API) *Set {
	s := &Set{
		Cards:     NewCards(api),
		Devices:   NewDevices(api),
		Payments:  NewPayments(api),
		Disputes:  NewDisputes(api),
		Bids:      NewBids(api),
		Accounts:  NewAccounts(api),
		Finances:  NewFinances(api),
		Dashboard: NewDashboard(api),
		Profile:   NewProfile(api),
	}
	s.tables = []Table{
		s.Cards.Table(),
		s.Devices.Table(),
		s.Payments.Table(),
		s.Disputes.Table(),
		s.Bids.FreeTable(),
		s.Bids.TakenTable(),
		s.Accounts.Table(),
		s.Finances.Table(),
	}
	return s
}

// Tables returns every list in menu order.
func (s *Set) Tables() []Table {
	return s.tables
}

// Table finds a list by name.
func (s *Set) Table(name string) (Table, bool) {
	for _, t := range s.tables {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
