package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key does not exist or has expired.
var ErrKeyNotFound = errors.New("key not found")

// Store is the shared key-value surface the service depends on: the graph
// snapshot lives under a single key, rate-limit counters and the reputation
// cache are TTL'd entries. All mutation of counters and cache goes through
// this interface; the graph key is read-only from this service.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Increment bumps an integer counter and returns the new value. The TTL
	// applies only when the counter is created; an existing counter keeps
	// its remaining window.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Close() error
}
