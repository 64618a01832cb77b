// ABOUTME: Key/value persistence contract behind the session store and gate
// ABOUTME: Implemented by in-memory, JSON file, and Redis backends

package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Get when the key has no value.
var ErrNotFound = errors.New("session: key not found")

// Backend is persistent local storage addressed by well-known string keys.
type Backend interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// SetMany writes all values in one step; readers never observe a
	// partially applied batch.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes the keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
