package settings

// Hooks lightweight callbacks for cache and decode events.
// Implementations MUST be cheap and non-blocking.
type Hooks interface {
	// Get missed the cache and filled it from the repository.
	CacheFilled(key string)

	// Forget removed key from the cache.
	CacheInvalidated(key string)

	// A stored or cached value could not be decoded.
	CorruptValue(key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CacheFilled(string)         {}
func (NopHooks) CacheInvalidated(string)    {}
func (NopHooks) CorruptValue(string, error) {}

// JoinHooks delivers every event to each of hs in order. Nil entries are
// skipped; with nothing left it returns NopHooks.
func JoinHooks(hs ...Hooks) Hooks {
	var m multiHooks
	for _, h := range hs {
		if h != nil {
			m = append(m, h)
		}
	}
	switch len(m) {
	case 0:
		return NopHooks{}
	case 1:
		return m[0]
	}
	return m
}

type multiHooks []Hooks

func (m multiHooks) CacheFilled(k string) {
	for _, h := range m {
		h.CacheFilled(k)
	}
}

func (m multiHooks) CacheInvalidated(k string) {
	for _, h := range m {
		h.CacheInvalidated(k)
	}
}

func (m multiHooks) CorruptValue(k string, err error) {
	for _, h := range m {
		h.CorruptValue(k, err)
	}
}
