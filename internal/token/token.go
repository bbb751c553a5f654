// Package token stores a tier's bearer token in a browser profile's local
// storage. The token is opaque: there is no validation and no expiry
// tracking here, a stale token is only discovered through a 401.
package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/ugs-portal/internal/storage"
)

// Local-storage keys of the two tiers.
const (
	StudentKey = "auth_token"
	AdminKey   = "admin_auth_token"
)

var ErrEmptyToken = errors.New("token: empty token")

// Store is the token cell of one tier in one browser profile.
type Store struct {
	backend storage.Storage
	profile string
	key     string
}

func NewStore(backend storage.Storage, profile, key string) *Store {
	return &Store{backend: backend, profile: profile, key: key}
}

// Get returns the stored token; ok is false when there is none.
func (s *Store) Get(ctx context.Context) (string, bool, error) {
	tok, ok, err := s.backend.GetItem(ctx, s.profile, s.key)
	if err != nil {
		return "", false, fmt.Errorf("token.Get: %w", err)
	}
	if tok == "" {
		return "", false, nil
	}
	return tok, ok, nil
}

func (s *Store) Set(ctx context.Context, tok string) error {
	if tok == "" {
		return ErrEmptyToken
	}
	if err := s.backend.SetItem(ctx, s.profile, s.key, tok); err != nil {
		return fmt.Errorf("token.Set: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context) error {
	if err := s.backend.RemoveItem(ctx, s.profile, s.key); err != nil {
		return fmt.Errorf("token.Remove: %w", err)
	}
	return nil
}
