// Package bus is the in-process notification bus entries use to tell each
// other that a key's stored value may have changed.
package bus

import (
	"context"
	"sync"
)

// Reserved topics.
const (
	// TopicStorage carries the store's native external-change signal.
	TopicStorage = "storage"
	// TopicLocal carries same-context writes, which the native signal omits.
	TopicLocal = "session-storage"
)

// Source tags where a Notification came from.
type Source uint8

const (
	SourceLocal Source = iota + 1
	SourceStore
)

func (s Source) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceStore:
		return "store"
	default:
		return "unknown"
	}
}

// Notification says that Key may have changed. AllKeys is set when the whole
// store changed (e.g. it was cleared) and every entry should re-read.
type Notification struct {
	Source  Source
	Key     string
	AllKeys bool
}

// Concerns reports whether an entry bound to key must react.
func (n Notification) Concerns(key string) bool {
	return n.AllKeys || n.Key == key
}

type Handler func(ctx context.Context, n Notification)

type Bus interface {
	Publish(ctx context.Context, topic string, n Notification) error
	// Subscribe registers h for topic. unsubscribe is idempotent.
	Subscribe(topic string, h Handler) (unsubscribe func())
}

// Local delivers synchronously on the publisher's goroutine, in subscription
// order. Handlers may publish or (un)subscribe re-entrantly.
type Local struct {
	mu   sync.RWMutex
	subs map[string][]*subscription
	seq  uint64
}

type subscription struct {
	id uint64
	h  Handler
}

var _ Bus = (*Local)(nil)

func NewLocal() *Local {
	return &Local{subs: make(map[string][]*subscription)}
}

var defaultBus = NewLocal()

// Default returns the process-wide bus.
func Default() *Local { return defaultBus }

func (b *Local) Publish(ctx context.Context, topic string, n Notification) error {
	b.mu.RLock()
	subs := append([]*subscription(nil), b.subs[topic]...)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.h(ctx, n)
	}
	return nil
}

func (b *Local) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	b.seq++
	id := b.seq
	b.subs[topic] = append(b.subs[topic], &subscription{id: id, h: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Local) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			// copy so in-flight Publish snapshots stay intact
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, topic)
			} else {
				b.subs[topic] = next
			}
			return
		}
	}
}

// Subscribers returns the number of handlers registered for topic.
func (b *Local) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
