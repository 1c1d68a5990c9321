package settings

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/unkn0wn-root/settings/cache"
	"github.com/unkn0wn-root/settings/repository"
)

var ErrNoRepository = errors.New("settings: repository is required")

// Settings is the cache-augmented façade over one repository.
// It satisfies repository.Repository itself.
type Settings struct {
	repo  repository.Repository
	log   Logger
	hooks Hooks

	mu      sync.RWMutex
	cache   cache.Cache
	enabled bool
}

var _ repository.Repository = (*Settings)(nil)

func newSettings(opts Options) (*Settings, error) {
	if opts.Repository == nil {
		return nil, ErrNoRepository
	}
	return &Settings{
		repo:    opts.Repository,
		cache:   opts.Cache,
		enabled: opts.CacheEnabled,
		log:     coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:   coalesce[Hooks](opts.Hooks, NopHooks{}),
	}, nil
}

func (s *Settings) Repository() repository.Repository { return s.repo }

func (s *Settings) EnableCache() { s.setEnabled(true) }

func (s *Settings) DisableCache() { s.setEnabled(false) }

func (s *Settings) setEnabled(on bool) {
	s.mu.Lock()
	s.enabled = on
	s.mu.Unlock()
	s.log.Debug("cache toggled", Fields{"enabled": on})
}

// SetCache attaches (or with nil detaches) the cache. The enabled flag is untouched.
func (s *Settings) SetCache(c cache.Cache) {
	s.mu.Lock()
	s.cache = c
	s.mu.Unlock()
}

// CacheEnabled reports whether caching is effective: enabled and attached.
func (s *Settings) CacheEnabled() bool { return s.activeCache() != nil }

func (s *Settings) activeCache() cache.Cache {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.enabled {
		return nil
	}
	return s.cache
}

// Has always asks the repository.
func (s *Settings) Has(ctx context.Context, key string) (bool, error) {
	return s.repo.Has(ctx, key)
}

// Get serves key from the cache when caching is effective, filling it from
// the repository on a miss. The fill result (def included) is cached until
// Set or Forget invalidates it.
func (s *Settings) Get(ctx context.Context, key string, def any) (any, error) {
	c := s.activeCache()
	if c == nil {
		return s.read(ctx, key, def)
	}

	filled := false
	v, err := c.RememberForever(ctx, key, func(ctx context.Context) (any, error) {
		filled = true
		return s.read(ctx, key, def)
	})
	if err != nil {
		if !filled {
			s.reportCorrupt(key, err)
		}
		return nil, err
	}
	if filled {
		s.hooks.CacheFilled(key)
		s.log.Debug("cache filled from repository", Fields{"key": key})
	}
	return v, nil
}

// Set writes the repository first, then the cache.
func (s *Settings) Set(ctx context.Context, key string, value any) error {
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}
	c := s.activeCache()
	if c == nil {
		return nil
	}
	if err := c.Set(ctx, key, value); err != nil {
		s.log.Warn("cache write failed after repository write", Fields{"key": key, "err": err})
		return &CacheError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// SetMany sets every pair in key order and stops at the first error.
func (s *Settings) SetMany(ctx context.Context, values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.Set(ctx, k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Forget deletes from the repository, then the cache. The result reports
// whether the repository held the key.
func (s *Settings) Forget(ctx context.Context, key string) (bool, error) {
	removed, err := s.repo.Forget(ctx, key)
	if err != nil {
		return false, err
	}
	c := s.activeCache()
	if c == nil {
		return removed, nil
	}
	if _, err := c.Forget(ctx, key); err != nil {
		s.log.Warn("cache delete failed after repository delete", Fields{"key": key, "err": err})
		return removed, &CacheError{Key: key, Op: "forget", Err: err}
	}
	s.hooks.CacheInvalidated(key)
	return removed, nil
}

func (s *Settings) read(ctx context.Context, key string, def any) (any, error) {
	v, err := s.repo.Get(ctx, key, def)
	if err != nil {
		s.reportCorrupt(key, err)
		return nil, err
	}
	return v, nil
}

func (s *Settings) reportCorrupt(key string, err error) {
	var ce *repository.CorruptError
	if errors.As(err, &ce) {
		s.hooks.CorruptValue(key, err)
		s.log.Error("stored value could not be decoded", Fields{"key": key, "err": err})
	}
}
