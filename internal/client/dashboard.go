// ABOUTME: Dashboard, balance history and profile routes of the changex API
// ABOUTME: Dates in routes are formatted as YYYY-MM-DD

package client

import (
	"context"
	"fmt"
	"time"
)

// DateLayout is the date format used in dashboard routes.
const DateLayout = "2006-01-02"

type dashboardEnvelope struct {
	Dashboard Stats `json:"dashboard"`
}

type chartEnvelope struct {
	Chart []Stats `json:"chart"`
}

type userEnvelope struct {
	User Profile `json:"user"`
}

type walletEnvelope struct {
	Wallet string `json:"wallet"`
}

type apkEnvelope struct {
	URL string `json:"url"`
}

// Dashboard returns the summary counters for the current period.
func (c *Client) Dashboard(ctx context.Context) (Stats, error) {
	return c.dashboard(ctx, "/dashboard")
}

// DashboardForDate returns the summary counters for one day.
func (c *Client) DashboardForDate(ctx context.Context, day time.Time) (Stats, error) {
	return c.dashboard(ctx, path("dashboard", day.Format(DateLayout)))
}

// DashboardForRange returns the summary counters between two days.
func (c *Client) DashboardForRange(ctx context.Context, from, to time.Time) (Stats, error) {
	return c.dashboard(ctx, path("dashboard", from.Format(DateLayout), to.Format(DateLayout)))
}

func (c *Client) dashboard(ctx context.Context, route string) (Stats, error) {
	out, err := post[dashboardEnvelope](ctx, c, route, nil)
	if err != nil {
		return nil, err
	}
	if out.Dashboard == nil {
		return Stats{}, nil
	}
	return out.Dashboard, nil
}

// Chart returns the chart record for the current period.
func (c *Client) Chart(ctx context.Context) (Stats, error) {
	return c.chart(ctx, "/dashboard/chart")
}

// ChartForDate returns the chart record for one day.
func (c *Client) ChartForDate(ctx context.Context, day time.Time) (Stats, error) {
	return c.chart(ctx, path("dashboard", "chart", day.Format(DateLayout)))
}

// chart returns the first record of the chart series; the API sends a
// one-element array.
func (c *Client) chart(ctx context.Context, route string) (Stats, error) {
	out, err := post[chartEnvelope](ctx, c, route, nil)
	if err != nil {
		return nil, err
	}
	if len(out.Chart) == 0 {
		return nil, fmt.Errorf("invalid response from backend: empty chart")
	}
	return out.Chart[0], nil
}

// BalanceHistory returns one page of balance movements.
func (c *Client) BalanceHistory(ctx context.Context, opts ListOptions) (*Page[BalanceEntry], error) {
	return list[BalanceEntry](ctx, c, "/balance/history", opts)
}

// Me returns the operator profile.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	out, err := post[userEnvelope](ctx, c, "/me", nil)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Wallet returns the operator's payout wallet address.
func (c *Client) Wallet(ctx context.Context) (string, error) {
	out, err := post[walletEnvelope](ctx, c, "/me/getWallet", nil)
	if err != nil {
		return "", err
	}
	return out.Wallet, nil
}

// LatestApp returns the download URL of the newest device app build. The
// route is public.
func (c *Client) LatestApp(ctx context.Context) (string, error) {
	out, err := getPublic[apkEnvelope](ctx, c, "/apk/getLatest.json")
	if err != nil {
		return "", err
	}
	return out.URL, nil
}
