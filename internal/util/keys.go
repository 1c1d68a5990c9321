package util

// Key joins prefix and key as "<prefix>:<key>". An empty prefix yields key unchanged.
func Key(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
