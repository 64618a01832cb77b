// ABOUTME: Dashboard summary and operator profile loaders
// ABOUTME: Independent reads are fetched concurrently with errgroup

package resources

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/changexio/changex-console/internal/client"
)

// DashboardAPI is the subset of the API client used for the dashboard.
type DashboardAPI interface {
	Dashboard(ctx context.Context) (client.Stats, error)
	DashboardForDate(ctx context.Context, day time.Time) (client.Stats, error)
	DashboardForRange(ctx context.Context, from, to time.Time) (client.Stats, error)
	Chart(ctx context.Context) (client.Stats, error)
	ChartForDate(ctx context.Context, day time.Time) (client.Stats, error)
	AwaitingDisputesCount(ctx context.Context) (int, error)
}

// Summary is the dashboard counters with the completion rate derived.
type Summary struct {
	Stats      client.Stats `json:"stats"`
	Percentage float64      `json:"percentage"`
}

// Overview is everything the dashboard screen shows at once.
type Overview struct {
	Summary          Summary      `json:"summary"`
	Chart            client.Stats `json:"chart"`
	AwaitingDisputes int          `json:"awaiting_disputes"`
}

// Percentage is completed payments over all payments, scaled to 0..100.
// No payments yields 0.
func Percentage(s client.Stats) float64 {
	total := s.Number("paymentsCount")
	if total == 0 {
		return 0
	}
	return s.Number("completePaymentsCount") / total * 100
}

func summarize(s client.Stats) Summary {
	return Summary{Stats: s, Percentage: Percentage(s)}
}

// Dashboard loads the summary counters and chart.
type Dashboard struct {
	api DashboardAPI
}

// NewDashboard creates a dashboard loader.
func NewDashboard(api DashboardAPI) *Dashboard {
	return &Dashboard{api: api}
}

// Summary loads the counters for the current period.
func (d *Dashboard) Summary(ctx context.Context) (Summary, error) {
	s, err := d.api.Dashboard(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(s), nil
}

// ForDate loads the counters for one day.
func (d *Dashboard) ForDate(ctx context.Context, day time.Time) (Summary, error) {
	s, err := d.api.DashboardForDate(ctx, day)
	if err != nil {
		return Summary{}, err
	}
	return summarize(s), nil
}

// ForRange loads the counters between two days.
func (d *Dashboard) ForRange(ctx context.Context, from, to time.Time) (Summary, error) {
	s, err := d.api.DashboardForRange(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}
	return summarize(s), nil
}

// Chart loads the chart record for the current period.
func (d *Dashboard) Chart(ctx context.Context) (Summary, error) {
	s, err := d.api.Chart(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(s), nil
}

// ChartForDate loads the chart record for one day.
func (d *Dashboard) ChartForDate(ctx context.Context, day time.Time) (client.Stats, error) {
	return d.api.ChartForDate(ctx, day)
}

// Overview loads the summary, chart and awaiting dispute count together.
func (d *Dashboard) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := d.Summary(gctx)
		out.Summary = s
		return err
	})
	g.Go(func() error {
		c, err := d.api.Chart(gctx)
		out.Chart = c
		return err
	})
	g.Go(func() error {
		n, err := d.api.AwaitingDisputesCount(gctx)
		out.AwaitingDisputes = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// ProfileAPI is the subset of the API client used for the operator profile.
type ProfileAPI interface {
	Me(ctx context.Context) (client.Profile, error)
	Wallet(ctx context.Context) (string, error)
	LatestApp(ctx context.Context) (string, error)
}

// ProfileInfo is the operator profile with wallet and app link.
type ProfileInfo struct {
	User      client.Profile `json:"user"`
	Wallet    string         `json:"wallet"`
	LatestApp string         `json:"latest_app,omitempty"`
}

// Profile loads operator details.
type Profile struct {
	api ProfileAPI
}

// NewProfile creates a profile loader.
func NewProfile(api ProfileAPI) *Profile {
	return &Profile{api: api}
}

// Me returns the operator record.
func (p *Profile) Me(ctx context.Context) (client.Profile, error) {
	return p.api.Me(ctx)
}

// Wallet returns the payout wallet address.
func (p *Profile) Wallet(ctx context.Context) (string, error) {
	return p.api.Wallet(ctx)
}

// LatestApp returns the device app download URL.
func (p *Profile) LatestApp(ctx context.Context) (string, error) {
	return p.api.LatestApp(ctx)
}

// Load fetches the profile, wallet and app link together. The app link is
// informational; failing to fetch it does not fail Load.
func (p *Profile) Load(ctx context.Context) (ProfileInfo, error) {
	var out ProfileInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := p.api.Me(gctx)
		out.User = u
		return err
	})
	g.Go(func() error {
		w, err := p.api.Wallet(gctx)
		out.Wallet = w
		return err
	})
	if err := g.Wait(); err != nil {
		return ProfileInfo{}, err
	}

	if url, err := p.api.LatestApp(ctx); err == nil {
		out.LatestApp = url
	}
	return out, nil
}
