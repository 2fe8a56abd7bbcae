// Package store defines the backing-store abstraction used by synccache.
//
// A Store is a session-scoped string-keyed byte store. Implementations MUST be
// byte-for-byte transparent: Get must return exactly the []byte previously
// passed to Set for the same key (no metadata, no re-encoding).
//
// A Store may be unavailable, e.g. when there is no session context to bind
// to. Callers check Available before touching it and treat an unavailable
// store as "nothing persisted", never as a crash.
package store

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable is returned when the store has no session context.
	ErrUnavailable = errors.New("store: unavailable")
	// ErrQuotaExceeded is returned when a write would exceed the store quota.
	ErrQuotaExceeded = errors.New("store: quota exceeded")
	// ErrRejected is returned when the store refused a write under pressure.
	ErrRejected = errors.New("store: write rejected")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")
)

// Store is a minimal synchronous byte store.
// Must be safe for concurrent use.
type Store interface {
	// Available reports whether a session context exists for this store.
	Available() bool

	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes a key. Removing a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Change describes a mutation observed through a Watcher.
type Change struct {
	Key string
	// AllKeys is set when the whole store was cleared; Key is empty then.
	AllKeys bool
}

// Watcher is implemented by stores that can signal changes made by another
// context sharing the same store. Watch callbacks MUST NOT fire for writes
// made through the watching handle itself.
type Watcher interface {
	Watch(ctx context.Context, fn func(Change)) (stop func(), err error)
}
