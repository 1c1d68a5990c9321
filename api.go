package settings

import (
	"context"

	"github.com/unkn0wn-root/settings/cache"
	"github.com/unkn0wn-root/settings/codec"
	"github.com/unkn0wn-root/settings/repository"
)

// Options configure Settings. Only Repository is required.
type Options struct {
	Repository   repository.Repository
	Cache        cache.Cache // optional; caching also needs CacheEnabled
	CacheEnabled bool
	Logger       Logger // nil => NopLogger
	Hooks        Hooks  // nil => NopHooks
}

func New(opts Options) (*Settings, error) {
	return newSettings(opts)
}

// Value reads key through s and converts the result to T.
// def is returned on a miss.
func Value[T any](ctx context.Context, s *Settings, key string, def T) (T, error) {
	v, err := s.Get(ctx, key, def)
	if err != nil {
		var zero T
		return zero, err
	}
	return codec.Convert[T](v)
}
