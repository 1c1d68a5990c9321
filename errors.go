package settings

import (
	"fmt"
)

// CacheError is returned when the repository write succeeded but mirroring
// it to the cache failed. It unwraps to the cache's error.
type CacheError struct {
	Key string
	Op  string // "set" or "forget"
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("settings: cache %s %q failed after repository write: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }
