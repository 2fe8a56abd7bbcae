package synccache

import (
	"context"
	"errors"
	"sync"

	"github.com/unkn0wn-root/synccache/bus"
	c "github.com/unkn0wn-root/synccache/codec"
	"github.com/unkn0wn-root/synccache/store"
)

var ErrEmptyKey = errors.New("synccache: key is required")

// Entry binds one store key to a locally cached value and keeps it in sync
// with every other Entry bound to the same key. Read and Write never fail:
// store and codec errors are logged, reported to Hooks and masked behind the
// initial value or a skipped write.
//
// Entry is safe for concurrent use.
type Entry[V any] struct {
	initial  Initial[V]
	store    store.Store
	bus      bus.Bus
	codec    c.Codec[V]
	log      Logger
	hooks    Hooks
	degraded DegradedWrites

	mu        sync.RWMutex
	key       string
	value     V
	state     State
	listeners []listener[V]
	nextID    uint64
	closed    bool

	unsubs    []func()
	closeOnce sync.Once
}

type listener[V any] struct {
	id uint64
	fn func(V)
}

func New[V any](key string, initial Initial[V], opts Options[V]) (*Entry[V], error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	e := &Entry[V]{
		initial:  initial,
		store:    opts.Store,
		bus:      coalesce[bus.Bus](opts.Bus, bus.Default()),
		codec:    coalesce[c.Codec[V]](opts.Codec, c.JSON[V]{}),
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:    coalesce[Hooks](opts.Hooks, NopHooks{}),
		degraded: opts.DegradedWrites,
		key:      key,
	}

	if opts.Lazy {
		e.value = initial.Eval()
		if !e.available() {
			e.state = Degraded
		}
	} else {
		e.value, _ = e.lookup(context.Background(), key)
	}

	e.unsubs = []func(){
		e.bus.Subscribe(bus.TopicStorage, e.handle),
		e.bus.Subscribe(bus.TopicLocal, e.handle),
	}
	if w, ok := opts.Store.(store.Watcher); ok && !opts.NoWatch {
		release, err := acquireBridge(w, e.bus)
		if err != nil {
			e.log.Warn("error watching session store changes", Fields{"key": key, "err": err})
		} else {
			e.unsubs = append(e.unsubs, release)
		}
	}
	return e, nil
}

// Key returns the bound key.
func (e *Entry[V]) Key() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.key
}

// Value returns the cached value.
func (e *Entry[V]) Value() V {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.value
}

func (e *Entry[V]) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Read reads the bound key from the store without touching the cached value.
// Missing keys, an unavailable store, and store or decode failures all yield
// a fresh evaluation of the initial value. A stored Undefined yields the zero
// value.
func (e *Entry[V]) Read(ctx context.Context) V {
	v, _ := e.lookup(ctx, e.Key())
	return v
}

// Lookup is Read that also reports whether a stored value was decoded.
func (e *Entry[V]) Lookup(ctx context.Context) (V, bool) {
	return e.lookup(ctx, e.Key())
}

func (e *Entry[V]) lookup(ctx context.Context, key string) (V, bool) {
	if !e.available() {
		e.setState(Degraded)
		e.log.Debug("session store unavailable; using initial value", Fields{"key": key})
		e.hooks.StoreUnavailable(OpRead, key)
		return e.initial.Eval(), false
	}
	e.setState(Synced)

	raw, ok, err := e.store.Get(ctx, key)
	if err != nil {
		err = &OpError{Op: OpRead, Key: key, Err: err}
		e.log.Warn("error reading session storage key", Fields{"key": key, "err": err})
		e.hooks.StoreAccessFailed(OpRead, key, err)
		return e.initial.Eval(), false
	}
	if !ok {
		return e.initial.Eval(), false
	}
	if string(raw) == Undefined {
		var zero V
		return zero, false
	}
	v, err := e.codec.Decode(raw)
	if err != nil {
		err = &OpError{Op: OpDecode, Key: key, Err: err}
		e.log.Warn("error parsing session storage value", Fields{"key": key, "err": err})
		e.hooks.DecodeFailed(key, err)
		return e.initial.Eval(), false
	}
	return v, true
}

// Write stores the resolved update, then replaces the cached value and
// notifies every entry bound to the key. A failed encode or store write
// changes nothing. While the store is unavailable Options.DegradedWrites
// applies.
func (e *Entry[V]) Write(ctx context.Context, u Update[V]) {
	key := e.Key()
	current := func() V {
		v, _ := e.lookup(ctx, key)
		return v
	}

	if !e.available() {
		e.setState(Degraded)
		e.log.Warn("tried setting session storage key without a session store", Fields{"key": key})
		e.hooks.StoreUnavailable(OpWrite, key)
		e.degradedApply(ctx, key, func() V { return u.resolve(current) })
		return
	}

	next := u.resolve(current)
	raw, err := e.encode(u, next)
	if err != nil {
		err = &OpError{Op: OpEncode, Key: key, Err: err}
		e.log.Warn("error encoding session storage value", Fields{"key": key, "err": err})
		e.hooks.EncodeFailed(key, err)
		return
	}
	if err := e.store.Set(ctx, key, raw); err != nil {
		err = &OpError{Op: OpWrite, Key: key, Err: err}
		e.log.Warn("error setting session storage key", Fields{"key": key, "err": err})
		e.hooks.StoreAccessFailed(OpWrite, key, err)
		return
	}
	e.setState(Synced)
	e.replace(key, next)
	e.publish(ctx, key)
}

// Set writes v.
func (e *Entry[V]) Set(ctx context.Context, v V) { e.Write(ctx, Value(v)) }

// Update writes fn applied to the currently stored value.
func (e *Entry[V]) Update(ctx context.Context, fn func(V) V) { e.Write(ctx, Func(fn)) }

// Clear writes Undefined.
func (e *Entry[V]) Clear(ctx context.Context) { e.Write(ctx, Unset[V]()) }

// Remove deletes the key from the store and resets the cached value to the
// initial value.
func (e *Entry[V]) Remove(ctx context.Context) {
	key := e.Key()
	if !e.available() {
		e.setState(Degraded)
		e.log.Warn("tried removing session storage key without a session store", Fields{"key": key})
		e.hooks.StoreUnavailable(OpRemove, key)
		e.degradedApply(ctx, key, e.initial.Eval)
		return
	}
	if err := e.store.Del(ctx, key); err != nil {
		err = &OpError{Op: OpRemove, Key: key, Err: err}
		e.log.Warn("error removing session storage key", Fields{"key": key, "err": err})
		e.hooks.StoreAccessFailed(OpRemove, key, err)
		return
	}
	e.setState(Synced)
	e.replace(key, e.initial.Eval())
	e.publish(ctx, key)
}

// Refresh re-reads the store into the cached value.
func (e *Entry[V]) Refresh(ctx context.Context) V {
	key := e.Key()
	v, _ := e.lookup(ctx, key)
	e.replace(key, v)
	return v
}

// SetKey rebinds the entry and re-reads under the new key, dropping the value
// cached for the old one.
func (e *Entry[V]) SetKey(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	e.mu.Lock()
	if e.key == key {
		e.mu.Unlock()
		return nil
	}
	e.key = key
	e.mu.Unlock()

	v, _ := e.lookup(ctx, key)
	e.replace(key, v)
	return nil
}

// OnChange registers fn to run after every replacement of the cached value.
func (e *Entry[V]) OnChange(fn func(V)) (cancel func()) {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener[V]{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close unsubscribes from the bus, releases the store watch and drops
// listeners. The store is not
// closed; writes through a closed entry still persist and notify others.
func (e *Entry[V]) Close() {
	e.closeOnce.Do(func() {
		for _, unsub := range e.unsubs {
			unsub()
		}
		e.mu.Lock()
		e.closed = true
		e.listeners = nil
		e.mu.Unlock()
	})
}

func (e *Entry[V]) handle(ctx context.Context, n bus.Notification) {
	e.mu.RLock()
	key, closed := e.key, e.closed
	e.mu.RUnlock()
	if closed || !n.Concerns(key) {
		return
	}
	e.hooks.Notified(key, n.Source.String())
	v, _ := e.lookup(ctx, key)
	e.replace(key, v)
}

func (e *Entry[V]) degradedApply(ctx context.Context, key string, next func() V) {
	switch e.degraded {
	case Discard:
		return
	case UpdateOnly:
		e.replace(key, next())
	default:
		e.replace(key, next())
		e.publish(ctx, key)
	}
}

func (e *Entry[V]) encode(u Update[V], v V) ([]byte, error) {
	if u.kind == updateUnset {
		return []byte(Undefined), nil
	}
	return e.codec.Encode(v)
}

func (e *Entry[V]) available() bool {
	return e.store != nil && e.store.Available()
}

func (e *Entry[V]) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// replace swaps the cached value unless the entry was rebound to another key
// in the meantime, then runs listeners outside the lock.
func (e *Entry[V]) replace(key string, v V) {
	e.mu.Lock()
	if e.key != key {
		e.mu.Unlock()
		return
	}
	e.value = v
	ls := append([]listener[V](nil), e.listeners...)
	e.mu.Unlock()

	for _, l := range ls {
		l.fn(v)
	}
}

func (e *Entry[V]) publish(ctx context.Context, key string) {
	n := bus.Notification{Source: bus.SourceLocal, Key: key}
	if err := e.bus.Publish(ctx, bus.TopicLocal, n); err != nil {
		e.log.Warn("error publishing session storage change", Fields{"key": key, "err": err})
	}
}
