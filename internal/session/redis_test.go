// ABOUTME: Tests for the Redis session backend
// ABOUTME: Runs against an in-process miniredis server; connection errors use a closed port

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedisBackend(RedisConfig{Addr: mr.Addr(), Prefix: "changex:"})
	if err != nil {
		t.Fatalf("expected connection, got %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, mr
}

func TestNewRedisBackend_NoAddress(t *testing.T) {
	if _, err := NewRedisBackend(RedisConfig{}); err == nil {
		t.Error("expected error for empty address, got nil")
	}
}

func TestNewRedisBackend_Unreachable(t *testing.T) {
	_, err := NewRedisBackend(RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
}

func TestRedisBackend_KeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	r := NewRedisBackendWithClient(client, "changex:")
	defer r.Close()

	if got := r.key(KeyAccessToken); got != "changex:accessToken" {
		t.Errorf("expected changex:accessToken, got %s", got)
	}
}

func TestRedisBackend_DeleteNothing(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	r := NewRedisBackendWithClient(client, "changex:")
	defer r.Close()

	if err := r.Delete(context.Background()); err != nil {
		t.Errorf("expected no error for empty delete, got %v", err)
	}
}

func TestRedisBackend_SetManyThenGet(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	err := r.SetMany(ctx, map[string]string{
		KeyAccessToken:  "acc-1",
		KeyRefreshToken: "ref-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := r.Get(ctx, KeyAccessToken)
	if err != nil || got != "acc-1" {
		t.Errorf("expected acc-1, got %q (%v)", got, err)
	}

	raw, err := mr.Get("changex:refreshToken")
	if err != nil || raw != "ref-1" {
		t.Errorf("expected prefixed key to hold ref-1, got %q (%v)", raw, err)
	}
	if mr.Exists(KeyRefreshToken) {
		t.Error("expected no unprefixed key in Redis")
	}
}

func TestRedisBackend_GetMissing(t *testing.T) {
	r, _ := newTestRedis(t)

	_, err := r.Get(context.Background(), KeyRole)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisBackend_Delete(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	if err := r.SetMany(ctx, map[string]string{KeyAccessToken: "a", KeyRole: "admin"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := r.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if mr.Exists("changex:accessToken") {
		t.Error("expected access token key to be deleted")
	}
	if !mr.Exists("changex:role") {
		t.Error("expected role key to survive")
	}
}

func TestStore_OverRedis(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	store := NewStore(r)
	gate := NewGate(r)

	in := Bundle{
		Status:               "ok",
		TokenType:            "Bearer",
		AccessToken:          "acc",
		AccessTokenExpireAt:  1700000000000,
		RefreshToken:         "ref",
		RefreshTokenExpireAt: 1700003600000,
		Role:                 "admin",
	}
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := gate.Open(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != in {
		t.Errorf("expected %+v, got %+v", in, out)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if keys := mr.Keys(); len(keys) != 1 || keys[0] != "changex:"+KeyLoginMarker {
		t.Errorf("expected only the gate key to remain, got %v", keys)
	}
	if !gate.IsOpen(ctx) {
		t.Error("expected gate to stay open after Clear")
	}
}
