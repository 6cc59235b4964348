package cache

import (
	"context"
	"fmt"
	"time"
)

// Client is the key-value backend behind the cache layer
type Client interface {
	// Get returns the stored value; found is false for missing or expired keys
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the given keys and returns how many existed
	Delete(ctx context.Context, keys ...string) (int, error)
	// DeletePattern removes every key matching a glob pattern ("*", "?", "[...]")
	DeletePattern(ctx context.Context, pattern string) (int, error)
	// Close releases the backend
	Close() error
}

// Error is a cache backend or serialization failure. The Cached wrapper never
// returns it to callers; it is logged and counted instead.
type Error struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}
