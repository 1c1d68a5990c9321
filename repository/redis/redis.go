// Package redis implements the key-store settings repository on go-redis.
//
// Entries live under "<prefix>:<key>" (just "<key>" when the prefix is empty).
// Besides the Repository contract it offers expiry, counters and
// RememberForever, which lets the same store act as the Settings cache.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/settings/codec"
	"github.com/unkn0wn-root/settings/internal/util"
	"github.com/unkn0wn-root/settings/repository"
)

var ErrNilClient = errors.New("redis repository: nil client")

type Repository struct {
	rdb         goredis.UniversalClient
	prefix      string
	codec       codec.Value
	closeClient bool
}

var _ repository.KeyStore = (*Repository)(nil)

type Config struct {
	Client      goredis.UniversalClient
	Prefix      string
	Codec       codec.Value
	CloseClient bool // set true only if this repository exclusively owns the client
}

func New(cfg Config) (*Repository, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Repository{
		rdb:         cfg.Client,
		prefix:      cfg.Prefix,
		codec:       cfg.Codec,
		closeClient: cfg.CloseClient,
	}, nil
}

func (r *Repository) Prefix() string { return r.prefix }

func (r *Repository) key(k string) string { return util.Key(r.prefix, k) }

func (r *Repository) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) Get(ctx context.Context, key string, def any) (any, error) {
	s, err := r.rdb.Get(ctx, r.key(key)).Result()
	if err == goredis.Nil {
		return def, nil // miss
	}
	if err != nil {
		return nil, err // transport/server error
	}
	v, err := r.codec.Decode(s)
	if err != nil {
		return nil, &repository.CorruptError{Key: key, Err: err}
	}
	return v, nil
}

func (r *Repository) Set(ctx context.Context, key string, value any) error {
	s, err := r.codec.Encode(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(key), s, 0).Err()
}

func (r *Repository) Forget(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Del(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	s, err := r.codec.Encode(value)
	if err != nil {
		return err
	}
	return r.rdb.SetEx(ctx, r.key(key), s, repository.ClampTTL(ttl)).Err()
}

func (r *Repository) Forever(ctx context.Context, key string, value any) error {
	return r.Set(ctx, key, value)
}

// RememberForever treats a stored nil like a miss.
func (r *Repository) RememberForever(ctx context.Context, key string, fill repository.FillFunc) (any, error) {
	v, err := r.Get(ctx, key, nil)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return v, nil
	}
	v, err = fill(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.Forever(ctx, key, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Repository) Increment(ctx context.Context, key string, by int64) (int64, error) {
	return r.rdb.IncrBy(ctx, r.key(key), by).Result()
}

func (r *Repository) Decrement(ctx context.Context, key string, by int64) (int64, error) {
	return r.rdb.DecrBy(ctx, r.key(key), by).Result()
}

// Close releases the underlying redis client only when this repository owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (r *Repository) Close(context.Context) error {
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
