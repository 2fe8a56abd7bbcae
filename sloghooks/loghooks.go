package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/synccache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	UnavailableEvery uint64
	NotifiedEvery    uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	unavailableCtr atomic.Uint64
	notifiedCtr    atomic.Uint64
}

var _ synccache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) StoreUnavailable(op, key string) {
	if h.l == nil || !sample(h.opts.UnavailableEvery, &h.unavailableCtr) {
		return
	}
	h.l.Debug("synccache.store_unavailable",
		"op", op,
		"key", h.redact(key))
}

func (h *Hooks) StoreAccessFailed(op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("synccache.store_access_failed",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) EncodeFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("synccache.encode_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) DecodeFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("synccache.decode_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) Notified(key, source string) {
	if h.l == nil || !sample(h.opts.NotifiedEvery, &h.notifiedCtr) {
		return
	}
	h.l.Debug("synccache.notified",
		"key", h.redact(key),
		"source", source)
}
