package bigcache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/synccache/store"
)

// Store keeps a session in allegro/bigcache. Entries live for the session
// lifetime (LifeWindow); bigcache has no per-entry TTL.
type Store struct {
	c      *bc.BigCache
	closed atomic.Bool
}

var _ store.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration // session lifetime; 0 => 30m
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = 30 * time.Minute
	}
	conf := bc.DefaultConfig(life)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Available() bool { return !s.closed.Load() }

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, store.ErrClosed
	}
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	if err := s.c.Set(key, value); err != nil {
		// bigcache refuses entries larger than a shard
		return errors.Join(store.ErrQuotaExceeded, err)
	}
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	if s.closed.Load() {
		return store.ErrClosed
	}
	if err := s.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Close is idempotent.
func (s *Store) Close(_ context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.c.Close()
}
