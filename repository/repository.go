// Package repository defines the contract every settings backend satisfies.
//
// Implementations must be safe for concurrent use to the extent their backend
// connection is. They add no locking of their own; two concurrent Set calls on
// one key race at the backend and the last write wins.
package repository

import (
	"context"
	"fmt"
	"time"
)

// Repository is a key/value settings backend.
type Repository interface {
	// Has reports whether the backend holds an entry for key.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the decoded value for key, or def unchanged on a miss.
	// A stored value that cannot be decoded is returned as *CorruptError.
	Get(ctx context.Context, key string, def any) (any, error)

	// Set encodes value and stores it under key, replacing any prior value.
	Set(ctx context.Context, key string, value any) error

	// Forget removes key and reports whether an entry was removed.
	Forget(ctx context.Context, key string) (bool, error)
}

// FillFunc computes a value on a cache miss.
type FillFunc func(ctx context.Context) (any, error)

// KeyStore is a Repository over a remote key/value store with expiry and
// atomic counters. It can serve as the Settings cache.
type KeyStore interface {
	Repository

	// Put stores value with an expiry. TTLs below one minute are raised to
	// one minute and truncated to whole seconds.
	Put(ctx context.Context, key string, value any, ttl time.Duration) error

	// Forever stores value without expiry.
	Forever(ctx context.Context, key string, value any) error

	// RememberForever returns the stored value or, on a miss, stores and
	// returns the result of fill. Not atomic: concurrent callers may each
	// run fill.
	RememberForever(ctx context.Context, key string, fill FillFunc) (any, error)

	// Increment and Decrement forward to the backend's atomic counter.
	Increment(ctx context.Context, key string, by int64) (int64, error)
	Decrement(ctx context.Context, key string, by int64) (int64, error)
}

// MinTTL is the smallest expiry Put applies.
const MinTTL = time.Minute

// ClampTTL raises ttl to MinTTL and truncates it to whole seconds.
func ClampTTL(ttl time.Duration) time.Duration {
	if ttl < MinTTL {
		return MinTTL
	}
	return ttl.Truncate(time.Second)
}

// CorruptError is returned when a stored value cannot be decoded.
// It unwraps to codec.ErrCorrupt.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("settings: decode %q: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }
