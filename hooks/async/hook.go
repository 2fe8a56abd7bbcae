// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    UnavailableEvery: 100, // sample logs: ~every 100th unavailable read
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	theme, _ := synccache.New("theme", synccache.Literal("light"), synccache.Options[string]{
//	    Store: sess,
//	    Hooks: hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/synccache"
)

// Hooks moves hook calls off the entry's goroutine. Events are dropped when
// the queue is full.
type Hooks struct {
	inner synccache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ synccache.Hooks = (*Hooks)(nil)

func New(inner synccache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events. Hooks must not be called after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) StoreUnavailable(op, k string) { h.try(func() { h.inner.StoreUnavailable(op, k) }) }
func (h *Hooks) EncodeFailed(k string, err error) {
	h.try(func() { h.inner.EncodeFailed(k, err) })
}
func (h *Hooks) DecodeFailed(k string, err error) {
	h.try(func() { h.inner.DecodeFailed(k, err) })
}
func (h *Hooks) StoreAccessFailed(op, k string, err error) {
	h.try(func() { h.inner.StoreAccessFailed(op, k, err) })
}
func (h *Hooks) Notified(k, src string) { h.try(func() { h.inner.Notified(k, src) }) }
