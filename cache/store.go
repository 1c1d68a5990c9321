package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/unkn0wn-root/settings/codec"
	"github.com/unkn0wn-root/settings/internal/util"
	pr "github.com/unkn0wn-root/settings/provider"
	"github.com/unkn0wn-root/settings/repository"
)

// SetCostFunc weighs an entry for cost-aware providers (ristretto).
type SetCostFunc func(key string, raw []byte) int64

var ErrNilProvider = errors.New("cache: provider is required")

type StoreOptions struct {
	Provider pr.Provider // required
	Prefix   string      // namespace for provider keys; "" => bare keys
	Codec    codec.Value // shared value codec
	Cost     SetCostFunc // default 1
}

// Store is a Cache over a byte provider. Values go through the same codec
// as repositories, so a cached value decodes exactly like a stored one.
type Store struct {
	p      pr.Provider
	prefix string
	codec  codec.Value
	cost   SetCostFunc
}

var _ Cache = (*Store)(nil)

func NewStore(opts StoreOptions) (*Store, error) {
	if opts.Provider == nil {
		return nil, ErrNilProvider
	}
	s := &Store{p: opts.Provider, prefix: opts.Prefix, codec: opts.Codec, cost: opts.Cost}
	if s.cost == nil {
		s.cost = func(string, []byte) int64 { return 1 }
	}
	return s, nil
}

func (s *Store) key(k string) string { return util.Key(s.prefix, k) }

// RememberForever returns the cached value, or stores and returns fill's
// result on a miss. A cached nil counts as a miss. Not atomic.
func (s *Store) RememberForever(ctx context.Context, key string, fill repository.FillFunc) (any, error) {
	v, err := s.get(ctx, key)
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
	if err := s.Set(ctx, key, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Set stores value without expiry. A write rejected by the provider under
// pressure is not an error; the next read falls through to fill.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	enc, err := s.codec.Encode(value)
	if err != nil {
		return err
	}
	k := s.key(key)
	raw := []byte(enc)
	if _, err := s.p.Set(ctx, k, raw, s.cost(k, raw), 0); err != nil {
		return err
	}
	return nil
}

func (s *Store) Forget(ctx context.Context, key string) (bool, error) {
	k := s.key(key)
	_, ok, err := s.p.Get(ctx, k)
	if err != nil {
		return false, err
	}
	if err := s.p.Del(ctx, k); err != nil {
		return false, err
	}
	return ok, nil
}

// Close closes the underlying provider.
func (s *Store) Close(ctx context.Context) error { return s.p.Close(ctx) }

func (s *Store) get(ctx context.Context, key string) (any, error) {
	k := s.key(key)
	raw, ok, err := s.p.Get(ctx, k)
	if err != nil || !ok {
		return nil, err
	}
	v, err := s.codec.Decode(string(raw))
	if err != nil {
		return nil, &repository.CorruptError{Key: key, Err: fmt.Errorf("cache: %w", err)}
	}
	return v, nil
}
