// Package store defines the shared state store the presence core
// coordinates through. All cross-instance state lives behind this
// interface; any KV store with per-key expiry and atomic set
// operations qualifies.
package store

import (
	"context"
	"time"
)

// StateStore is the narrow contract over a TTL-capable key/value
// store. Every operation is atomic at the single-key level; nothing
// here spans keys transactionally. Implementations wrap reachability
// failures in domain.ErrStoreUnavailable.
type StateStore interface {
	// SetWithTTL writes value under key, replacing any previous value
	// and resetting the expiry.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value and whether the key exists. An expired or
	// never-written key reads as absent, never as an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// GetMany returns the present subset of keys in one round trip.
	GetMany(ctx context.Context, keys []string) (map[string]string, error)

	Delete(ctx context.Context, key string) error

	// AddToSet adds member to the set at key and refreshes the set's
	// expiry.
	AddToSet(ctx context.Context, key, member string, ttl time.Duration) error

	RemoveFromSet(ctx context.Context, key, member string) error

	Members(ctx context.Context, key string) ([]string, error)

	Cardinality(ctx context.Context, key string) (int64, error)

	// Cardinalities returns one count per key, in key order, in a
	// single round trip.
	Cardinalities(ctx context.Context, keys []string) ([]int64, error)

	Increment(ctx context.Context, key string) (int64, error)

	// Decrement never takes the stored value below zero.
	Decrement(ctx context.Context, key string) (int64, error)
}
