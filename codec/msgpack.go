package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is a Codec that serializes values using vmihailenco/msgpack/v5.
// The zero value is ready to use.
//
// With Loose set, integers decoded into interface values widen to
// int64/uint64 and floats to float64 instead of the narrowest wire type.
// Maps decoded into interface values are map[string]any when all keys are
// strings and map[any]any otherwise.
type Msgpack[V any] struct {
	Loose bool
}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (c Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(c.Loose)
	dec.SetMapDecoder(decodeAnyMap)
	err := dec.Decode(&v)
	return v, err
}

// nested maps come back through the decoder hook, so they are already keyed
func decodeAnyMap(d *msgpack.Decoder) (any, error) {
	m, err := d.DecodeUntypedMap()
	if err != nil || m == nil {
		return nil, err
	}
	return stringKeyed(m), nil
}
