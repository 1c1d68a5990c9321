package ttlcache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	pr "github.com/unkn0wn-root/settings/provider"
)

// Provider is an in-process byte store on jellydator/ttlcache with
// per-entry TTL and optional capacity-based eviction.
type Provider struct {
	c *ttlcache.Cache[string, []byte]
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	Capacity uint64 // 0 = unbounded
}

// New starts the background expiry loop; Close stops it.
func New(cfg Config) *Provider {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if cfg.Capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](cfg.Capacity))
	}
	c := ttlcache.New[string, []byte](opts...)
	go c.Start()
	return &Provider{c: c}
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	it := p.c.Get(key)
	if it == nil {
		return nil, false, nil
	}
	return it.Value(), true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	p.c.Set(key, value, ttl)
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Delete(key)
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Stop()
	return nil
}
