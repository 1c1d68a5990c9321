package codec

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/settings/internal/wire"
)

// Format selects the structured codec used for non-numeric values.
type Format = wire.Format

const (
	FormatMsgpack  = wire.FormatMsgpack
	FormatCBOR     = wire.FormatCBOR
	FormatProtobuf = wire.FormatProtobuf
	FormatJSON     = wire.FormatJSON
)

var cborAny = MustCBOR[any]()

var structured = map[Format]Codec[any]{
	FormatMsgpack:  Msgpack[any]{Loose: true},
	FormatCBOR:     cborAny,
	FormatProtobuf: Structpb{},
	FormatJSON:     JSON[any]{},
}

// ParseFormat maps a configuration name to a Format. Empty selects msgpack.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "msgpack":
		return FormatMsgpack, nil
	case "cbor":
		return FormatCBOR, nil
	case "protobuf", "structpb":
		return FormatProtobuf, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("settings: unknown codec %q", name)
}

// Value is the codec shared by every text-oriented repository.
// The zero value writes msgpack and reads every known format.
type Value struct {
	// Format used by Encode for non-numeric values. Zero => msgpack.
	Format Format
	// MaxDecode caps the structured payload size accepted by Decode.
	// <= 0 disables the limit.
	MaxDecode int
}

func (c Value) format() Format {
	if c.Format == 0 {
		return FormatMsgpack
	}
	return c.Format
}

// Encode returns numeric values as their plain text and wraps everything
// else in a structured envelope.
func (c Value) Encode(v any) (string, error) {
	if s, ok := Numeric(v); ok {
		return s, nil
	}
	f := c.format()
	inner, ok := structured[f]
	if !ok {
		return "", fmt.Errorf("settings: unknown codec format %q", byte(f))
	}
	payload, err := inner.Encode(v)
	if err != nil {
		return "", fmt.Errorf("settings: encode %T as %s: %w", v, f, err)
	}
	return wire.Encode(f, payload), nil
}

// Decode returns numeric text as a Number and reconstructs structured
// envelopes regardless of the configured Format. Failures match ErrCorrupt.
func (c Value) Decode(s string) (any, error) {
	if IsNumericText(s) {
		return Number(s), nil
	}
	f, payload, err := wire.Decode(s)
	if err != nil {
		return nil, err
	}
	dec := LimitCodec[any]{Inner: structured[f], MaxDecode: c.MaxDecode}
	v, err := dec.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, f, err)
	}
	return v, nil
}
