// Package prometheus counts settings cache events with client_golang.
package prometheus

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/settings"
)

// Hooks increments one counter per event kind. Keys are not used as labels
// to keep cardinality bounded.
type Hooks struct {
	filled      prometheus.Counter
	invalidated prometheus.Counter
	corrupt     prometheus.Counter
}

var _ settings.Hooks = (*Hooks)(nil)

// New registers the counters on reg. A nil reg uses prometheus.DefaultRegisterer.
//
// Counters already registered for the same service are reused, so several
// handles built in one process share their totals.
func New(reg prometheus.Registerer, service string) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"service": service}
	return &Hooks{
		filled: counter(reg, prometheus.CounterOpts{
			Name:        "settings_cache_fills_total",
			Help:        "Number of cache misses filled from the repository.",
			ConstLabels: labels,
		}),
		invalidated: counter(reg, prometheus.CounterOpts{
			Name:        "settings_cache_invalidations_total",
			Help:        "Number of keys removed from the cache by Forget.",
			ConstLabels: labels,
		}),
		corrupt: counter(reg, prometheus.CounterOpts{
			Name:        "settings_corrupt_values_total",
			Help:        "Number of stored or cached values that failed to decode.",
			ConstLabels: labels,
		}),
	}
}

// counter registers a new counter or returns the one already registered
// under the same descriptor. Any other registration error panics, like
// MustRegister.
func counter(reg prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (h *Hooks) CacheFilled(string)         { h.filled.Inc() }
func (h *Hooks) CacheInvalidated(string)    { h.invalidated.Inc() }
func (h *Hooks) CorruptValue(string, error) { h.corrupt.Inc() }
