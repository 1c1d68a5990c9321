// Package app wires configuration into a ready Settings handle.
//
// An App is what callers pass around instead of a process-wide accessor:
// build it once at startup, share it, Close it on shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/settings"
	"github.com/unkn0wn-root/settings/backend"
	"github.com/unkn0wn-root/settings/cache"
	"github.com/unkn0wn-root/settings/codec"
	"github.com/unkn0wn-root/settings/config"
	asynchook "github.com/unkn0wn-root/settings/hooks/async"
	promhooks "github.com/unkn0wn-root/settings/hooks/prometheus"
	"github.com/unkn0wn-root/settings/repository"
	"github.com/unkn0wn-root/settings/repository/database"
	"github.com/unkn0wn-root/settings/sloghooks"
)

// ErrNotKeyStore is returned by KeyStore when the default repository has no
// expiry or counters.
var ErrNotKeyStore = errors.New("app: default repository is not a key store")

type Options struct {
	Logger settings.Logger // nil => NopLogger
	// Hooks replaces the hooks block of the config when set.
	Hooks settings.Hooks
	// Connections reuses an existing registry; App does not close it.
	Connections *backend.Connections

	// SlogLogger receives event lines for hooks.log. nil => slog.Default().
	SlogLogger *slog.Logger
	// Registerer receives the counters for hooks.metrics.
	// nil => prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

type App struct {
	cfg       *config.Config
	conns     *backend.Connections
	ownsConns bool
	codec     codec.Value
	repo      repository.Repository
	cache     cache.Cache
	settings  *settings.Settings
	log       settings.Logger
	async     *asynchook.Hooks
}

type closer interface {
	Close(ctx context.Context) error
}

// New opens the configured connections, builds the default repository and
// the cache, and returns the handle. Any configuration error is returned
// here, never later.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is nil")
	}
	a := &App{cfg: cfg, log: opts.Logger, conns: opts.Connections}
	if a.log == nil {
		a.log = settings.NopLogger{}
	}

	var err error
	if a.codec, err = backend.Codec(cfg); err != nil {
		return nil, err
	}
	if a.conns == nil {
		if a.conns, err = backend.Open(ctx, cfg.Connections); err != nil {
			return nil, err
		}
		a.ownsConns = true
	}

	if err := a.wire(ctx, a.hooks(opts)); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.log.Info("settings ready", settings.Fields{
		"repository": cfg.Default,
		"cache":      cfg.Cache.Store,
		"enabled":    a.settings.CacheEnabled(),
	})
	return a, nil
}

func (a *App) wire(ctx context.Context, hooks settings.Hooks) error {
	repo, err := backend.New("", a.cfg, a.conns, a.codec)
	if err != nil {
		return err
	}
	a.repo = repo

	c, err := backend.NewCache(ctx, a.cfg, a.conns, a.codec)
	if err != nil {
		return err
	}
	a.cache = c

	a.settings, err = settings.New(settings.Options{
		Repository:   repo,
		Cache:        c,
		CacheEnabled: a.cfg.Cache.Enabled,
		Logger:       a.log,
		Hooks:        hooks,
	})
	return err
}

// hooks returns opts.Hooks when set, otherwise what the hooks block enables.
func (a *App) hooks(opts Options) settings.Hooks {
	if opts.Hooks != nil {
		return opts.Hooks
	}
	hc := a.cfg.Hooks
	var hs []settings.Hooks
	if hc.Log {
		l := opts.SlogLogger
		if l == nil {
			l = slog.Default()
		}
		hs = append(hs, sloghooks.New(l, sloghooks.Options{FillEvery: hc.LogFillEvery}))
	}
	if hc.Metrics {
		service := hc.Service
		if service == "" {
			service = "settings"
		}
		hs = append(hs, promhooks.New(opts.Registerer, service))
	}
	if len(hs) == 0 {
		return nil
	}
	h := settings.JoinHooks(hs...)
	if hc.AsyncWorkers > 0 {
		a.async = asynchook.New(h, hc.AsyncWorkers, hc.AsyncQueue)
		return a.async
	}
	return h
}

func (a *App) Settings() *settings.Settings { return a.settings }

func (a *App) Config() *config.Config { return a.cfg }

func (a *App) Connections() *backend.Connections { return a.conns }

// Repository builds the named repository ("" is the default) on the App's
// connections and codec.
func (a *App) Repository(name string) (repository.Repository, error) {
	if name == "" {
		return a.repo, nil
	}
	return backend.New(name, a.cfg, a.conns, a.codec)
}

// KeyStore returns the default repository when it supports expiry and counters.
func (a *App) KeyStore() (repository.KeyStore, error) {
	ks, ok := a.repo.(repository.KeyStore)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotKeyStore, a.cfg.Default)
	}
	return ks, nil
}

// Migrate creates the table of every database-driven repository.
func (a *App) Migrate(ctx context.Context) error {
	for name := range a.cfg.Repositories {
		rc, err := a.cfg.Repository(name)
		if err != nil {
			return err
		}
		if !strings.EqualFold(rc.Driver, backend.DriverDatabase) {
			continue
		}
		repo, err := a.Repository(name)
		if err != nil {
			return err
		}
		dr, ok := repo.(*database.Repository)
		if !ok {
			continue
		}
		if err := dr.Migrate(ctx); err != nil {
			return fmt.Errorf("app: migrate %q: %w", name, err)
		}
		a.log.Info("table migrated", settings.Fields{"repository": name, "table": dr.Table()})
	}
	return nil
}

// Close releases the cache and, when App opened them, the connections.
// Queued hook events are delivered before it returns.
func (a *App) Close(ctx context.Context) error {
	if a.async != nil {
		a.async.Close()
	}
	var errs []error
	if c, ok := a.cache.(closer); ok {
		errs = append(errs, c.Close(ctx))
	}
	if a.ownsConns {
		errs = append(errs, a.conns.Close())
	}
	return errors.Join(errs...)
}
