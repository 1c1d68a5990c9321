package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/settings"
	"github.com/unkn0wn-root/settings/config"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		Default: "database",
		Codec:   "msgpack",
		Cache:   config.Cache{Enabled: true, Store: "ttlcache", Prefix: "settings"},
		Repositories: map[string]config.Repository{
			"database": {Driver: "database", Table: "settings"},
			"audit":    {Driver: "database", Table: "settings_audit"},
		},
		Connections: config.Connections{
			Database: map[string]config.Database{"default": {Dialect: "sqlite", DSN: ":memory:"}},
		},
	}
}

func TestAppDatabaseWithCache(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, sqliteConfig(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	require.NoError(t, a.Migrate(ctx))
	s := a.Settings()
	assert.True(t, s.CacheEnabled())

	require.NoError(t, s.Set(ctx, "site.title", "Acme"))
	v, err := s.Get(ctx, "site.title", nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme", v)

	audit, err := a.Repository("audit")
	require.NoError(t, err)
	ok, err := audit.Has(ctx, "site.title")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = a.KeyStore()
	assert.ErrorIs(t, err, ErrNotKeyStore)
}

func TestAppRedisKeyStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Default:      "redis",
		Repositories: map[string]config.Repository{"redis": {Prefix: "app"}},
		Connections: config.Connections{
			Redis: map[string]config.Redis{"default": {Addr: mr.Addr()}},
		},
	}

	a, err := New(ctx, cfg, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })
	assert.False(t, a.Settings().CacheEnabled())

	ks, err := a.KeyStore()
	require.NoError(t, err)
	n, err := ks.Increment(ctx, "hits", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err := mr.Get("app:hits")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestAppConfigErrorsAtStartup(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Repositories["database"] = config.Repository{Driver: "database", Connection: "missing"}

	_, err := New(context.Background(), cfg, Options{})
	assert.Error(t, err)
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.log")
	l, err := NewLogger(config.Log{Level: "debug", Format: "json", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l.Debug("cache toggled")
	require.NoError(t, l.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `"msg":"cache toggled"`), string(b))
}

func TestNewLoggerRejectsBadConfig(t *testing.T) {
	_, err := NewLogger(config.Log{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(config.Log{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestAppHooksFromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig()
	cfg.Hooks = config.Hooks{Log: true, Metrics: true, Service: "billing", AsyncWorkers: 1, AsyncQueue: 16}

	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	a, err := New(ctx, cfg, Options{
		SlogLogger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Registerer: reg,
	})
	require.NoError(t, err)
	require.NoError(t, a.Migrate(ctx))

	_, err = a.Settings().Get(ctx, "site.title", "Acme")
	require.NoError(t, err)
	_, err = a.Settings().Forget(ctx, "site.title")
	require.NoError(t, err)

	// Close drains the async queue
	require.NoError(t, a.Close(ctx))

	assert.Contains(t, buf.String(), "settings.cache_filled")
	assert.Contains(t, buf.String(), "settings.cache_invalidated")
	assert.NotContains(t, buf.String(), "site.title", "keys are redacted")

	expected := `
# HELP settings_cache_fills_total Number of cache misses filled from the repository.
# TYPE settings_cache_fills_total counter
settings_cache_fills_total{service="billing"} 1
# HELP settings_cache_invalidations_total Number of keys removed from the cache by Forget.
# TYPE settings_cache_invalidations_total counter
settings_cache_invalidations_total{service="billing"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"settings_cache_fills_total", "settings_cache_invalidations_total"))
}

func TestAppMetricsSurviveRebuild(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	for i := 0; i < 2; i++ {
		cfg := sqliteConfig()
		cfg.Hooks = config.Hooks{Metrics: true}
		a, err := New(ctx, cfg, Options{Registerer: reg})
		require.NoError(t, err)
		require.NoError(t, a.Close(ctx))
	}
	n, err := testutil.GatherAndCount(reg, "settings_cache_fills_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAppExplicitHooksWin(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig()
	cfg.Hooks = config.Hooks{Metrics: true}
	reg := prometheus.NewRegistry()

	a, err := New(ctx, cfg, Options{Hooks: settings.NopHooks{}, Registerer: reg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestNewSettingsLoggerBackends(t *testing.T) {
	for _, backend := range []string{"zap", "zerolog", "logrus", "slog"} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.log")
			l, release, err := NewSettingsLogger(config.Log{
				Backend: backend, Level: "debug", Format: "json", File: path, MaxSizeMB: 1,
			})
			require.NoError(t, err)

			l.Info("cache toggled", settings.Fields{"enabled": true})
			require.NoError(t, release())

			b, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(b), "cache toggled")
			assert.Contains(t, string(b), `"enabled":true`)
		})
	}
}

func TestNewSettingsLoggerLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.log")
	l, release, err := NewSettingsLogger(config.Log{Backend: "logrus", Level: "warn", File: path})
	require.NoError(t, err)

	l.Info("hidden", nil)
	l.Warn("shown", nil)
	require.NoError(t, release())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hidden")
	assert.Contains(t, string(b), "shown")
}

func TestNewSettingsLoggerRejectsBadConfig(t *testing.T) {
	_, _, err := NewSettingsLogger(config.Log{Backend: "glog"})
	assert.Error(t, err)

	_, _, err = NewSettingsLogger(config.Log{Backend: "slog", Level: "loud"})
	assert.Error(t, err)

	_, _, err = NewSettingsLogger(config.Log{Backend: "zerolog", Format: "xml"})
	assert.Error(t, err)
}
