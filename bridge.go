package synccache

import (
	"context"
	"reflect"
	"sync"

	"github.com/unkn0wn-root/synccache/bus"
	"github.com/unkn0wn-root/synccache/store"
)

// Bridge republishes a store's native change signal on bus.TopicStorage, so
// entries on b see writes made by other contexts sharing the store.
// New already does this for every Store that is a store.Watcher; call Bridge
// yourself only for entries built with Options.NoWatch. Call it once per
// store handle, not once per entry.
func Bridge(ctx context.Context, w store.Watcher, b bus.Bus) (stop func(), err error) {
	return w.Watch(ctx, func(ch store.Change) {
		n := bus.Notification{Source: bus.SourceStore, Key: ch.Key, AllKeys: ch.AllKeys}
		_ = b.Publish(context.WithoutCancel(ctx), bus.TopicStorage, n)
	})
}

type bridgeKey struct {
	w store.Watcher
	b bus.Bus
}

type bridgeRef struct {
	refs int
	stop func()
}

// bridges holds one running Bridge per (store handle, bus) pair, shared by
// every entry on that pair.
var bridges = struct {
	mu sync.Mutex
	m  map[bridgeKey]*bridgeRef
}{m: make(map[bridgeKey]*bridgeRef)}

// acquireBridge returns a release func that stops the shared bridge once the
// last entry using it lets go. Handles that cannot be map keys get a private
// bridge.
func acquireBridge(w store.Watcher, b bus.Bus) (release func(), err error) {
	if !hashable(w) || !hashable(b) {
		return Bridge(context.Background(), w, b)
	}
	k := bridgeKey{w: w, b: b}

	bridges.mu.Lock()
	ref, ok := bridges.m[k]
	if !ok {
		stop, err := Bridge(context.Background(), w, b)
		if err != nil {
			bridges.mu.Unlock()
			return nil, err
		}
		ref = &bridgeRef{stop: stop}
		bridges.m[k] = ref
	}
	ref.refs++
	bridges.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			bridges.mu.Lock()
			ref.refs--
			last := ref.refs == 0
			if last {
				delete(bridges.m, k)
			}
			bridges.mu.Unlock()
			// stop may wait on a watcher goroutine that is delivering to an entry
			if last {
				ref.stop()
			}
		})
	}, nil
}

func hashable(v any) bool {
	return reflect.TypeOf(v).Comparable()
}
