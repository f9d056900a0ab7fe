package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get when no value exists under a key.
var ErrNotFound = errors.New("store: key not found")

// Store is the key-value persistence contract required by the game service:
// plain get/set of serialized game states, plus the two atomic primitives
// the per-game advisory lock is built on.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A zero ttl stores without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys matching the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// SetIfAbsent atomically stores value under key with the given expiry
	// only when the key does not exist, reporting whether it was stored.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// CompareAndDelete atomically deletes key only while it still holds
	// value, reporting whether a deletion happened.
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}
