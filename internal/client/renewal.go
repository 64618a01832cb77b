// ABOUTME: Session renewal using the stored refresh token
// ABOUTME: Concurrent renewals share one in-flight refresh call via singleflight

package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/changexio/changex-console/internal/session"
)

const renewalKey = "refresh"

// Renew exchanges the stored refresh token for a new token bundle and
// persists it. Concurrent callers share a single refresh call; each caller
// still returns early if its own context ends.
//
// With no refresh token stored Renew returns ErrNoRefreshToken without any
// network call. A rejection with a session-expiry code is retried once,
// since a concurrently rotated token can fail the first attempt.
func (c *Client) Renew(ctx context.Context) (*session.Bundle, error) {
	return c.renewAfter(ctx, "")
}

// renewAfter renews unless the stored access token already differs from
// stale, in which case another caller renewed in the meantime and the
// stored bundle is returned as is.
func (c *Client) renewAfter(ctx context.Context, stale string) (*session.Bundle, error) {
	ch := c.renewals.DoChan(renewalKey, func() (interface{}, error) {
		// Detached so one caller's cancellation does not fail the others.
		detached := context.WithoutCancel(ctx)
		if stale != "" {
			if current, err := c.store.Load(detached); err == nil && current.AccessToken != "" && current.AccessToken != stale {
				slog.Debug("Session already renewed by another caller")
				return &current, nil
			}
		}
		return c.renew(detached)
	})

	select {
	case <-ctx.Done():
		return nil, c.handleRequestError(ctx, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*session.Bundle), nil
	}
}

func (c *Client) renew(ctx context.Context) (*session.Bundle, error) {
	refresh, err := c.store.RefreshToken(ctx)
	if err != nil {
		return nil, err
	}
	if refresh == "" {
		return nil, ErrNoRefreshToken
	}

	bundle, err := c.requestRenewal(ctx, refresh)
	if err == nil || !IsSessionExpired(err) {
		return bundle, err
	}

	slog.Info("Session renewal rejected, retrying once", "code", ErrorCode(err))
	refresh = c.bearerFor(ctx, RefreshRoute)
	if refresh == "" {
		return nil, ErrNoRefreshToken
	}
	return c.requestRenewal(ctx, refresh)
}

func (c *Client) requestRenewal(ctx context.Context, refresh string) (*session.Bundle, error) {
	enc, err := encode(Request{Route: RefreshRoute})
	if err != nil {
		return nil, err
	}

	resp, err := c.dispatch(ctx, enc, refresh)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session renewal returned status %d", resp.StatusCode)
	}

	var bundle session.Bundle
	if err := resp.Decode(&bundle); err != nil {
		return nil, err
	}
	if bundle.AccessToken == "" {
		return nil, fmt.Errorf("session renewal returned no access token")
	}
	if err := c.store.Save(ctx, bundle); err != nil {
		return nil, err
	}

	slog.Debug("Session renewed", "access_expires", bundle.AccessExpiry())
	return &bundle, nil
}
