// ABOUTME: Session gate flag deciding whether protected screens may open
// ABOUTME: Kept apart from the tokens; it says "logged in", not "token valid"

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// gateOpenValue is the truthy marker written on login.
const gateOpenValue = "true"

// Gate is the client-side logged-in marker. It is set when login succeeds
// and cleared when logout completes, independent of token validity.
type Gate struct {
	backend Backend
}

// NewGate creates a gate over the given backend.
func NewGate(backend Backend) *Gate {
	return &Gate{backend: backend}
}

// Open sets the marker.
func (g *Gate) Open(ctx context.Context) error {
	if err := g.backend.SetMany(ctx, map[string]string{KeyLoginMarker: gateOpenValue}); err != nil {
		return fmt.Errorf("failed to open session gate: %w", err)
	}
	return nil
}

// Close removes the marker.
func (g *Gate) Close(ctx context.Context) error {
	if err := g.backend.Delete(ctx, KeyLoginMarker); err != nil {
		return fmt.Errorf("failed to close session gate: %w", err)
	}
	return nil
}

// IsOpen reports whether protected navigation is allowed. Backend errors
// read as closed.
func (g *Gate) IsOpen(ctx context.Context) bool {
	v, err := g.backend.Get(ctx, KeyLoginMarker)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("Session gate unreadable, treating as closed", "error", err)
		}
		return false
	}
	return v != ""
}
