// Package settings implements a key/value settings store with a uniform
// Has/Get/Set/Forget contract over interchangeable repositories and an
// optional read-through / write-through cache.
//
// Components:
//   - repository.Repository: a backend. repository/database stores rows in a
//     table via gorm; repository/redis stores "<prefix>:<key>" entries via go-redis.
//   - codec.Value: numeric values are stored as plain text, everything else as
//     a tagged structured blob (msgpack by default).
//   - cache.Cache: optional collaborator; repository/redis or cache.Store over
//     an in-process provider (ristretto, bigcache, ttlcache).
//   - Settings: composes one repository with an optional cache.
//
// Caching is effective only when it is enabled AND a cache is attached:
//
//	Get    -> cache.RememberForever(key, repo.Get)  (cached until Set/Forget)
//	Set    -> repo.Set, then cache.Set
//	Forget -> repo.Forget, then cache.Forget
//	Has    -> repo.Has (never the cache)
//
// Writes that bypass Settings are not seen by a warm cache.
package settings
