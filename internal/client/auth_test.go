// ABOUTME: Tests for login, logout and pairing token routes
// ABOUTME: Covers gate handling and the logout renewal retry

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestLogin_PersistsBundleAndOpensGate(t *testing.T) {
	h := newHarness(t)
	h.api.handle(LoginRoute, func(w http.ResponseWriter, c call) {
		if c.Bearer != "" {
			t.Errorf("expected login without bearer, got %q", c.Bearer)
		}
		var body map[string]string
		json.Unmarshal([]byte(c.Body), &body)
		if body["token"] != "operator-token" {
			t.Errorf("expected token in body, got %q", c.Body)
		}
		writeJSON(w, http.StatusOK, bundle("access-1", "refresh-1"))
	})

	b, err := h.client.Login(context.Background(), "operator-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.AccessToken != "access-1" {
		t.Errorf("expected access-1, got %q", b.AccessToken)
	}
	if !h.gate.IsOpen(context.Background()) {
		t.Error("expected gate open after login")
	}
	stored, _ := h.store.Load(context.Background())
	if stored.RefreshToken != "refresh-1" || stored.Role != "operator" {
		t.Errorf("expected bundle persisted, got %+v", stored)
	}
}

func TestLogin_RejectedLeavesGateClosed(t *testing.T) {
	h := newHarness(t)
	h.api.handle(LoginRoute, func(w http.ResponseWriter, c call) {
		writeJSON(w, http.StatusForbidden, map[string]string{"code": "invalid_token"})
	})

	if _, err := h.client.Login(context.Background(), "bad"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if h.gate.IsOpen(context.Background()) {
		t.Error("expected gate closed after failed login")
	}
}

func TestLogout_PurgesAndClosesGate(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "access-1", "refresh-1")
	h.gate.Open(context.Background())
	h.api.handle(LogoutRoute, acceptOnly("access-1", map[string]string{"status": "ok"}))

	if err := h.client.Logout(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.gate.IsOpen(context.Background()) {
		t.Error("expected gate closed after logout")
	}
	stored, _ := h.store.Load(context.Background())
	if !stored.Empty() || stored.Role != "" || stored.AccessTokenExpireAt != 0 {
		t.Errorf("expected all fields cleared, got %+v", stored)
	}
}

func TestLogout_RenewsAndRetriesOnce(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "access-old", "refresh-1")
	h.gate.Open(context.Background())
	h.api.handle(LogoutRoute, acceptOnly("access-new", map[string]string{"status": "ok"}))
	h.api.handle(RefreshRoute, func(w http.ResponseWriter, c call) {
		writeJSON(w, http.StatusOK, bundle("access-new", "refresh-2"))
	})

	if err := h.client.Logout(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(h.api.callsTo(LogoutRoute)); n != 2 {
		t.Errorf("expected logout plus one retry, got %d", n)
	}
	if n := len(h.api.callsTo(RefreshRoute)); n != 1 {
		t.Errorf("expected one renewal, got %d", n)
	}
	if h.gate.IsOpen(context.Background()) {
		t.Error("expected gate closed")
	}
	if tok, _ := h.store.RefreshToken(context.Background()); tok != "" {
		t.Errorf("expected refresh token cleared, got %q", tok)
	}
}

func TestLogout_NoRefreshTokenLeavesState(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "access-old", "")
	h.gate.Open(context.Background())
	h.api.handle(LogoutRoute, acceptOnly("never", nil))

	if err := h.client.Logout(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.gate.IsOpen(context.Background()) {
		t.Error("expected gate left open")
	}
	if tok, _ := h.store.AccessToken(context.Background()); tok != "access-old" {
		t.Errorf("expected access token kept, got %q", tok)
	}
	if n := len(h.api.callsTo(LogoutRoute)); n != 1 {
		t.Errorf("expected a single logout call, got %d", n)
	}
}

func TestLogout_ServerErrorKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "access-1", "refresh-1")
	h.gate.Open(context.Background())
	h.api.handle(LogoutRoute, func(w http.ResponseWriter, c call) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "internal"})
	})

	err := h.client.Logout(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !h.gate.IsOpen(context.Background()) {
		t.Error("expected gate left open")
	}
}

func TestTempTokenFlow(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "access-1", "refresh-1")
	h.api.handle(TempTokenRoute, acceptOnly("access-1", map[string]string{"qr": "changex://pair/abc"}))
	h.api.handle(CheckTempTokenRoute, acceptOnly("access-1", map[string]string{"status": TempTokenDone}))

	qr, err := h.client.TempToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qr != "changex://pair/abc" {
		t.Errorf("unexpected qr %q", qr)
	}
	status, err := h.client.CheckTempToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != TempTokenDone {
		t.Errorf("expected status done, got %q", status)
	}
}
