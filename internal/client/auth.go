// ABOUTME: Login, logout and device pairing token routes
// ABOUTME: Login persists the credential bundle and opens the session gate

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/changexio/changex-console/internal/session"
)

// Auth routes.
const (
	LoginRoute          = "/auth/login"
	LogoutRoute         = "/auth/logout"
	RefreshRoute        = "/auth/refresh"
	TempTokenRoute      = "/auth/getTempToken"
	CheckTempTokenRoute = "/auth/checkTempToken"
)

// TempTokenDone is the status reported once a device has consumed the
// pairing token.
const TempTokenDone = "done"

type loginRequest struct {
	Token string `json:"token"`
}

// Login exchanges an operator token for a credential bundle, persists the
// bundle and opens the session gate. Login is sent without any bearer.
func (c *Client) Login(ctx context.Context, token string) (*session.Bundle, error) {
	resp, err := c.SendPublic(ctx, Request{Route: LoginRoute, Body: loginRequest{Token: token}})
	if err != nil {
		return nil, err
	}

	var bundle session.Bundle
	if err := resp.Decode(&bundle); err != nil {
		return nil, err
	}
	if err := c.store.Save(ctx, bundle); err != nil {
		return nil, err
	}
	if err := c.gate.Open(ctx); err != nil {
		return nil, err
	}

	slog.Info("Logged in", "role", bundle.Role)
	return &bundle, nil
}

// Logout ends the server session, then clears every stored credential
// field and closes the gate.
//
// If the server rejects the access token, the session is renewed and
// logout retried once. With no refresh token stored Logout does nothing
// and leaves local state as it is. Other failures are returned and local
// state is kept.
func (c *Client) Logout(ctx context.Context) error {
	enc, err := encode(Request{Route: LogoutRoute})
	if err != nil {
		return err
	}

	_, err = c.dispatch(ctx, enc, c.bearerFor(ctx, LogoutRoute))
	if err == nil {
		return c.purge(ctx)
	}
	if !IsSessionExpired(err) {
		return err
	}

	if c.bearerFor(ctx, RefreshRoute) == "" {
		slog.Warn("Logout rejected and no refresh token stored, leaving session as is")
		return nil
	}

	if _, err := c.Renew(ctx); err != nil {
		if errors.Is(err, ErrNoRefreshToken) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	if _, err := c.dispatch(ctx, enc, c.bearerFor(ctx, LogoutRoute)); err != nil {
		return err
	}
	return c.purge(ctx)
}

func (c *Client) purge(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	if err := c.gate.Close(ctx); err != nil {
		return err
	}
	slog.Info("Logged out")
	return nil
}

type tempTokenResponse struct {
	QR string `json:"qr"`
}

type tempTokenStatus struct {
	Status string `json:"status"`
}

// TempToken requests a short-lived pairing token, encoded for a QR code.
func (c *Client) TempToken(ctx context.Context) (string, error) {
	out, err := post[tempTokenResponse](ctx, c, TempTokenRoute, nil)
	if err != nil {
		return "", err
	}
	return out.QR, nil
}

// CheckTempToken reports the pairing token status; TempTokenDone once a
// device has paired.
func (c *Client) CheckTempToken(ctx context.Context) (string, error) {
	out, err := post[tempTokenStatus](ctx, c, CheckTempTokenRoute, nil)
	if err != nil {
		return "", err
	}
	return out.Status, nil
}
