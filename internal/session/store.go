// ABOUTME: Session store reading and writing the credential bundle
// ABOUTME: Pure data access over a Backend; no renewal or expiry logic here

package session

import (
	"context"
	"errors"
	"fmt"
)

// Store reads and writes the credential bundle under the well-known keys.
type Store struct {
	backend Backend
}

// NewStore creates a store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load returns the stored bundle. Missing fields decode as zero values, so
// a never-saved store yields an empty bundle and no error.
func (s *Store) Load(ctx context.Context) (Bundle, error) {
	values := make(map[string]string, len(bundleKeys))
	for _, k := range bundleKeys {
		v, err := s.backend.Get(ctx, k)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Bundle{}, fmt.Errorf("failed to load session: %w", err)
		}
		values[k] = v
	}
	return bundleFromFields(values), nil
}

// Save overwrites every bundle field in a single batch. Both tokens are
// always replaced together.
func (s *Store) Save(ctx context.Context, b Bundle) error {
	if err := s.backend.SetMany(ctx, b.fields()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear erases every bundle field. The session gate is left untouched.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, bundleKeys...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// AccessToken returns the stored access token or "".
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.value(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token or "".
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.value(ctx, KeyRefreshToken)
}

func (s *Store) value(ctx context.Context, key string) (string, error) {
	v, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}
