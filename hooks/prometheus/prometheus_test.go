package prometheus

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersTrackEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(reg, "test")

	h.CacheFilled("a")
	h.CacheFilled("b")
	h.CacheInvalidated("a")
	h.CorruptValue("c", errors.New("bad"))

	assert.Equal(t, 2.0, testutil.ToFloat64(h.filled))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.invalidated))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.corrupt))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSecondHandleSharesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "test")
	var b *Hooks
	require.NotPanics(t, func() { b = New(reg, "test") })

	a.CacheFilled("x")
	b.CacheFilled("y")
	assert.Equal(t, 2.0, testutil.ToFloat64(a.filled))
	assert.Equal(t, 2.0, testutil.ToFloat64(b.filled))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestServicesAreSeparateSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, "api")
	b := New(reg, "worker")

	a.CacheInvalidated("k")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.invalidated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.invalidated))

	n, err := testutil.GatherAndCount(reg, "settings_cache_invalidations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestConflictingRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	// same name, different help text: not a reusable collector
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "settings_cache_fills_total",
		Help:        "something else",
		ConstLabels: prometheus.Labels{"service": "test"},
	}))
	assert.Panics(t, func() { New(reg, "test") })
}
