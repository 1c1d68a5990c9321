package codec

// stringKeyed returns m as a map[string]any when every key is a string and
// m unchanged otherwise. Settings written as map[string]T read back as
// map[string]any; maps with other key types read back as map[any]any.
func stringKeyed(m map[any]any) any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		s, ok := k.(string)
		if !ok {
			return m
		}
		out[s] = v
	}
	return out
}

// normalizeMaps applies stringKeyed to every map[any]any reachable from v.
func normalizeMaps(v any) any {
	switch x := v.(type) {
	case map[any]any:
		for k, e := range x {
			x[k] = normalizeMaps(e)
		}
		return stringKeyed(x)
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeMaps(e)
		}
	case []any:
		for i, e := range x {
			x[i] = normalizeMaps(e)
		}
	}
	return v
}
