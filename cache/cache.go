// Package cache defines the collaborator Settings uses for read-through
// caching, and Store, which adapts any byte provider into one.
//
// Entries are kept "forever": they are only replaced by Set or removed by
// Forget. The key-store repository (repository/redis) satisfies Cache too.
package cache

import (
	"context"

	"github.com/unkn0wn-root/settings/repository"
)

// Cache is the subset of a key store Settings needs.
type Cache interface {
	RememberForever(ctx context.Context, key string, fill repository.FillFunc) (any, error)
	Set(ctx context.Context, key string, value any) error
	Forget(ctx context.Context, key string) (bool, error)
}
