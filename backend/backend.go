// Package backend turns configuration into wired repositories and caches.
//
// Every failure here is a startup error: an unknown driver, dialect or
// connection name means the configuration is wrong, not that a request failed.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/unkn0wn-root/settings/cache"
	"github.com/unkn0wn-root/settings/codec"
	"github.com/unkn0wn-root/settings/config"
	bcp "github.com/unkn0wn-root/settings/provider/bigcache"
	rcp "github.com/unkn0wn-root/settings/provider/ristretto"
	tcp "github.com/unkn0wn-root/settings/provider/ttlcache"
	"github.com/unkn0wn-root/settings/repository"
	"github.com/unkn0wn-root/settings/repository/database"
	rredis "github.com/unkn0wn-root/settings/repository/redis"
)

const (
	DriverDatabase = "database"
	DriverRedis    = "redis"

	DefaultConnection = "default"
)

var (
	ErrUnknownDriver     = errors.New("backend: unknown driver")
	ErrUnknownDialect    = errors.New("backend: unknown database dialect")
	ErrUnknownConnection = errors.New("backend: unknown connection")
	ErrUnknownStore      = errors.New("backend: unknown cache store")
)

// Codec builds the value codec from the codec and max_decode settings.
func Codec(cfg *config.Config) (codec.Value, error) {
	f, err := codec.ParseFormat(cfg.Codec)
	if err != nil {
		return codec.Value{}, err
	}
	return codec.Value{Format: f, MaxDecode: cfg.MaxDecode}, nil
}

// New builds the repository named name ("" selects cfg.Default).
func New(name string, cfg *config.Config, conns *Connections, c codec.Value) (repository.Repository, error) {
	rc, err := cfg.Repository(name)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(rc.Driver) {
	case DriverDatabase:
		db, err := conns.database(rc.Connection)
		if err != nil {
			return nil, err
		}
		return database.New(db, rc.Table, c)
	case DriverRedis:
		rdb, err := conns.redis(rc.Connection)
		if err != nil {
			return nil, err
		}
		return rredis.New(rredis.Config{Client: rdb, Prefix: rc.Prefix, Codec: c})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, rc.Driver)
}

// NewCache builds the cache collaborator selected by cache.store.
// It returns a nil Cache for "none" (or an empty store).
func NewCache(ctx context.Context, cfg *config.Config, conns *Connections, c codec.Value) (cache.Cache, error) {
	cc := cfg.Cache
	switch strings.ToLower(cc.Store) {
	case "", "none":
		return nil, nil
	case "redis":
		rdb, err := conns.redis(cc.Connection)
		if err != nil {
			return nil, err
		}
		return rredis.New(rredis.Config{Client: rdb, Prefix: cc.Prefix, Codec: c})
	case "ristretto":
		p, err := rcp.New(rcp.Config{
			NumCounters: cc.Ristretto.NumCounters,
			MaxCost:     cc.Ristretto.MaxCost,
			BufferItems: cc.Ristretto.BufferItems,
		})
		if err != nil {
			return nil, err
		}
		return cache.NewStore(cache.StoreOptions{
			Provider: p,
			Prefix:   cc.Prefix,
			Codec:    c,
			Cost:     func(_ string, raw []byte) int64 { return int64(len(raw)) },
		})
	case "bigcache":
		p, err := bcp.New(ctx, bcp.Config{
			LifeWindow:         cc.Bigcache.LifeWindow,
			MaxEntrySize:       cc.Bigcache.MaxEntrySize,
			HardMaxCacheSizeMB: cc.Bigcache.HardMaxCacheSizeMB,
		})
		if err != nil {
			return nil, err
		}
		return cache.NewStore(cache.StoreOptions{Provider: p, Prefix: cc.Prefix, Codec: c})
	case "ttlcache":
		p := tcp.New(tcp.Config{Capacity: cc.Ttlcache.Capacity})
		return cache.NewStore(cache.StoreOptions{Provider: p, Prefix: cc.Prefix, Codec: c})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cc.Store)
}
