package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/synccache/internal/wire"
	"github.com/unkn0wn-root/synccache/store"
)

var (
	ErrNilClient    = errors.New("redis store: nil client")
	ErrEmptySession = errors.New("redis store: session is required")
)

// Store keeps one session's keys in Redis under "sess:<session>:<key>".
// Every write also publishes a change event on the session channel so that
// other contexts bound to the same session can re-read. Each Store handle has
// its own origin id and never reports its own writes to its watchers.
type Store struct {
	rdb         goredis.UniversalClient
	prefix      string
	channel     string
	ttl         time.Duration
	origin      string
	closeClient bool
	closed      atomic.Bool
}

var (
	_ store.Store   = (*Store)(nil)
	_ store.Watcher = (*Store)(nil)
)

type Config struct {
	Client  goredis.UniversalClient
	Session string        // session id; required
	TTL     time.Duration // per key, reset when that key is written; 0 = no expiry
	Channel string        // change channel; "" => "sess:<session>:changes"
	// CloseClient set true only if this store exclusively owns the client.
	CloseClient bool
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Session == "" {
		return nil, ErrEmptySession
	}
	ch := cfg.Channel
	if ch == "" {
		ch = "sess:" + cfg.Session + ":changes"
	}
	return &Store{
		rdb:         cfg.Client,
		prefix:      "sess:" + cfg.Session + ":",
		channel:     ch,
		ttl:         cfg.TTL,
		origin:      newOrigin(),
		closeClient: cfg.CloseClient,
	}, nil
}

func newOrigin() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Available() bool { return !s.closed.Load() }

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, store.ErrClosed
	}
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// Set writes the value and publishes the change in one MULTI/EXEC.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	ev, err := wire.Encode(wire.Event{Kind: wire.KindSet, Origin: s.origin, Key: key})
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.key(key), value, s.ttl)
		p.Publish(ctx, s.channel, ev)
		return nil
	})
	return err
}

func (s *Store) Del(ctx context.Context, key string) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	ev, err := wire.Encode(wire.Event{Kind: wire.KindDel, Origin: s.origin, Key: key})
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, s.key(key))
		p.Publish(ctx, s.channel, ev)
		return nil
	})
	return err
}

// Clear drops every key of the session and signals a whole-store change.
func (s *Store) Clear(ctx context.Context) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 256).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	ev, err := wire.Encode(wire.Event{Kind: wire.KindClear, Origin: s.origin})
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		if len(keys) > 0 {
			p.Del(ctx, keys...)
		}
		p.Publish(ctx, s.channel, ev)
		return nil
	})
	return err
}

// Watch subscribes to the session channel. fn runs on the subscription
// goroutine. The returned stop closes the subscription and waits for it.
func (s *Store) Watch(ctx context.Context, fn func(store.Change)) (func(), error) {
	if s.closed.Load() {
		return nil, store.ErrClosed
	}
	ps := s.rdb.Subscribe(ctx, s.channel)
	// wait for the subscription to be confirmed so no write is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range ps.Channel() {
			if c, ok := s.change(msg.Payload); ok {
				fn(c)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = ps.Close()
			wg.Wait()
		})
	}, nil
}

// change maps a channel payload to a Change. Own and corrupt events are dropped.
func (s *Store) change(payload string) (store.Change, bool) {
	ev, err := wire.Decode([]byte(payload))
	if err != nil || ev.Origin == s.origin {
		return store.Change{}, false
	}
	if ev.Kind == wire.KindClear {
		return store.Change{AllKeys: true}, true
	}
	return store.Change{Key: ev.Key}, true
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
