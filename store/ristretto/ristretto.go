package ristretto

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/synccache/store"
)

// Store keeps a session in dgraph-io/ristretto. Writes are flushed through
// ristretto's buffers before Set returns so a following Get observes them.
type Store struct {
	c      *rc.Cache
	ttl    time.Duration
	closed atomic.Bool
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // cost of an entry is len(key)+len(value)
	BufferItems int64
	Metrics     bool
	SessionTTL  time.Duration // 0 = entries never expire
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c, ttl: cfg.SessionTTL}, nil
}

func (s *Store) Available() bool { return !s.closed.Load() }

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, store.ErrClosed
	}
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	b := append([]byte(nil), value...)
	if !s.c.SetWithTTL(key, b, int64(len(key)+len(b)), s.ttl) {
		return store.ErrRejected
	}
	s.c.Wait()
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	s.c.Del(key)
	s.c.Wait()
	return nil
}

func (s *Store) Close(_ context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto counters when Config.Metrics is set.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
