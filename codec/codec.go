// Package codec converts setting values to and from the text stored by
// repositories.
//
// Numeric values (Go integer and float kinds, Number, and strings holding a
// decimal number) are stored as their plain text so they stay readable and
// queryable in the backend. Everything else is marshalled by a structured
// Codec and wrapped in a small text envelope naming the format that wrote it:
//
//	42            numeric, stored verbatim
//	m1:gaRuYW1l.. msgpack, base64 body
//	j1:{"a":true} json, raw body
//
// Decoding numeric text yields a Number; no numeric casting is performed.
package codec

import "github.com/unkn0wn-root/settings/internal/wire"

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// ErrCorrupt is matched (errors.Is) by every decode failure of stored text.
var ErrCorrupt = wire.ErrCorrupt
