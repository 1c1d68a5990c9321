package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/settings"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	FillEvery       uint64
	InvalidateEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	fillCtr       atomic.Uint64
	invalidateCtr atomic.Uint64
}

var _ settings.Hooks = (*Hooks)(nil)

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

func (h *Hooks) CacheFilled(key string) {
	if h.l == nil || !sample(h.opts.FillEvery, &h.fillCtr) {
		return
	}
	h.l.Debug("settings.cache_filled",
		"key", h.redact(key))
}

func (h *Hooks) CacheInvalidated(key string) {
	if h.l == nil || !sample(h.opts.InvalidateEvery, &h.invalidateCtr) {
		return
	}
	h.l.Debug("settings.cache_invalidated",
		"key", h.redact(key))
}

func (h *Hooks) CorruptValue(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("settings.corrupt_value",
		"key", h.redact(key),
		"err", err)
}
