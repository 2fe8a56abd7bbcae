// Package memory is an in-process session store.
//
// One session space is shared by any number of context handles. A write made
// through one handle is signalled to watchers registered on the other handles
// only, the same way a browser's storage event never reaches the document that
// made the change.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/synccache/store"
)

type Config struct {
	// QuotaBytes caps the sum of len(key)+len(value) over all entries.
	// 0 = unlimited.
	QuotaBytes int
}

type space struct {
	mu       sync.RWMutex
	data     map[string][]byte
	used     int
	quota    int
	watchers map[uint64]watcher
	nextW    uint64

	available atomic.Bool
	nextCtx   atomic.Uint64
}

type watcher struct {
	origin uint64
	fn     func(store.Change)
}

// Store is one context handle over a session space.
type Store struct {
	sp     *space
	origin uint64
}

var (
	_ store.Store   = (*Store)(nil)
	_ store.Watcher = (*Store)(nil)
)

func New(cfg Config) *Store {
	sp := &space{
		data:     make(map[string][]byte),
		quota:    cfg.QuotaBytes,
		watchers: make(map[uint64]watcher),
	}
	sp.available.Store(true)
	return &Store{sp: sp, origin: sp.nextCtx.Add(1)}
}

// Context returns a new handle sharing this handle's session space.
func (s *Store) Context() *Store {
	return &Store{sp: s.sp, origin: s.sp.nextCtx.Add(1)}
}

// SetAvailable toggles the session context for every handle of the space.
func (s *Store) SetAvailable(ok bool) { s.sp.available.Store(ok) }

func (s *Store) Available() bool { return s.sp.available.Load() }

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if !s.Available() {
		return nil, false, store.ErrUnavailable
	}
	s.sp.mu.RLock()
	v, ok := s.sp.data[key]
	s.sp.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if !s.Available() {
		return store.ErrUnavailable
	}
	b := append([]byte(nil), value...)

	s.sp.mu.Lock()
	used := s.sp.used + len(key) + len(b)
	if old, ok := s.sp.data[key]; ok {
		used -= len(key) + len(old)
	}
	if s.sp.quota > 0 && used > s.sp.quota {
		s.sp.mu.Unlock()
		return store.ErrQuotaExceeded
	}
	s.sp.data[key] = b
	s.sp.used = used
	fns := s.peersLocked()
	s.sp.mu.Unlock()

	notify(fns, store.Change{Key: key})
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	if !s.Available() {
		return store.ErrUnavailable
	}
	s.sp.mu.Lock()
	old, ok := s.sp.data[key]
	if !ok {
		s.sp.mu.Unlock()
		return nil
	}
	delete(s.sp.data, key)
	s.sp.used -= len(key) + len(old)
	fns := s.peersLocked()
	s.sp.mu.Unlock()

	notify(fns, store.Change{Key: key})
	return nil
}

// Clear drops every key in the session space.
func (s *Store) Clear() {
	s.sp.mu.Lock()
	s.sp.data = make(map[string][]byte)
	s.sp.used = 0
	fns := s.peersLocked()
	s.sp.mu.Unlock()

	notify(fns, store.Change{AllKeys: true})
}

// Len returns the number of keys in the session space.
func (s *Store) Len() int {
	s.sp.mu.RLock()
	defer s.sp.mu.RUnlock()
	return len(s.sp.data)
}

// Watch registers fn for changes made through other handles of the space.
func (s *Store) Watch(_ context.Context, fn func(store.Change)) (func(), error) {
	s.sp.mu.Lock()
	s.sp.nextW++
	id := s.sp.nextW
	s.sp.watchers[id] = watcher{origin: s.origin, fn: fn}
	s.sp.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.sp.mu.Lock()
			delete(s.sp.watchers, id)
			s.sp.mu.Unlock()
		})
	}, nil
}

func (s *Store) Close(_ context.Context) error { return nil }

// peersLocked collects watchers of other handles. Caller holds sp.mu.
func (s *Store) peersLocked() []func(store.Change) {
	if len(s.sp.watchers) == 0 {
		return nil
	}
	out := make([]func(store.Change), 0, len(s.sp.watchers))
	for _, w := range s.sp.watchers {
		if w.origin != s.origin {
			out = append(out, w.fn)
		}
	}
	return out
}

func notify(fns []func(store.Change), c store.Change) {
	for _, fn := range fns {
		fn(c)
	}
}
