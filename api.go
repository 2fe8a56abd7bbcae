package synccache

import (
	"github.com/unkn0wn-root/synccache/bus"
	c "github.com/unkn0wn-root/synccache/codec"
	"github.com/unkn0wn-root/synccache/store"
)

// DegradedWrites decides what Write does while the store is unavailable.
type DegradedWrites uint8

const (
	// UpdateAndNotify updates the cached value and publishes a notification
	// even though nothing was persisted. Entries re-read on that notification
	// and so settle on the initial value, the writer included.
	UpdateAndNotify DegradedWrites = iota
	// UpdateOnly updates the cached value without notifying anyone.
	UpdateOnly
	// Discard drops the write.
	Discard
)

// State is the entry's view of its store.
type State uint8

const (
	// Synced: the cached value reflects the last successful read or write.
	Synced State = iota
	// Degraded: the store is unavailable; the cached value is the initial value
	// (or an unpersisted degraded write).
	Degraded
)

func (s State) String() string {
	if s == Degraded {
		return "degraded"
	}
	return "synced"
}

// Options tune an Entry. All fields are optional.
type Options[V any] struct {
	Store  store.Store // nil => no session context; the entry stays Degraded
	Bus    bus.Bus     // nil => bus.Default()
	Codec  c.Codec[V]  // nil => codec.JSON[V]
	Logger Logger      // nil => NopLogger
	Hooks  Hooks       // nil => NopHooks

	DegradedWrites DegradedWrites // default UpdateAndNotify

	// Lazy skips the read at construction; the entry holds the initial value
	// until Refresh, a write, or a notification.
	Lazy bool

	// NoWatch skips watching a Store that implements store.Watcher. Entries
	// then only see other contexts' writes if the caller runs Bridge.
	NoWatch bool
}
