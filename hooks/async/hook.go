// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/settings"
//	"github.com/unkn0wn-root/settings/hooks/async"
//	"github.com/unkn0wn-root/settings/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    FillEvery: 10, // sample logs: ~every 10th cache fill
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	s, _ := settings.New(settings.Options{
//	    Repository:   repo,
//	    Cache:        c,
//	    CacheEnabled: true,
//	    Hooks:        hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/settings"
)

type Hooks struct {
	inner   settings.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ settings.Hooks = (*Hooks)(nil)

func New(inner settings.Hooks, workers, qlen int) *Hooks {
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

// Close drains queued events and stops the workers. Safe to call twice.
// Events submitted after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed queue after Close
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) CacheFilled(k string)      { h.try(func() { h.inner.CacheFilled(k) }) }
func (h *Hooks) CacheInvalidated(k string) { h.try(func() { h.inner.CacheInvalidated(k) }) }
func (h *Hooks) CorruptValue(k string, err error) {
	h.try(func() { h.inner.CorruptValue(k, err) })
}
