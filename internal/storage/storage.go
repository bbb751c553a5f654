// Package storage defines the Storage interface: the portal's stand-in for
// a browser's local storage. Every browser is a "profile"; each profile
// owns a small set of string keys.
//
// Handlers and sessions only depend on this interface, so the backend
// (SQLite file, Redis, memory) is chosen once in main.
package storage

import "context"

// Storage is the local-storage contract. Every call is a single atomic
// operation on one key; concurrent writers race and the last write wins.
type Storage interface {
	// GetItem returns the value stored under key for the profile.
	// ok is false when the key is absent.
	GetItem(ctx context.Context, profile, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, profile, key, value string) error

	// RemoveItem deletes the key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, profile, key string) error

	Close() error
}
