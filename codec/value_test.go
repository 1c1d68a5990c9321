package codec

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/unkn0wn-root/settings/internal/wire"
)

var formats = []Format{FormatMsgpack, FormatCBOR, FormatProtobuf, FormatJSON}

func structuredFixtures() []any {
	return []any{
		"Acme",
		true,
		false,
		nil,
		"",
		"1.2.3",
		[]any{"a", "b", true},
		map[string]any{
			"name":  "Acme",
			"ratio": 0.5,
			"on":    true,
			"tags":  []any{"x", "y"},
			"nested": map[string]any{
				"deep": []any{map[string]any{"k": "v"}},
			},
		},
	}
}

// ==============================
// Round-trip
// ==============================

func TestStructuredRoundTripAllFormats(t *testing.T) {
	for _, f := range formats {
		c := Value{Format: f}
		for _, v := range structuredFixtures() {
			enc, err := c.Encode(v)
			if err != nil {
				t.Fatalf("%s Encode(%#v): %v", f, v, err)
			}
			got, err := c.Decode(enc)
			if err != nil {
				t.Fatalf("%s Decode(%q): %v", f, enc, err)
			}
			if !reflect.DeepEqual(got, v) {
				t.Fatalf("%s round-trip mismatch: got %#v want %#v", f, got, v)
			}
		}
	}
}

func TestNonStringMapKeysRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want map[Format]any // missing format => Encode must fail
	}{
		{
			name: "int keys",
			in:   map[int]string{1: "a"},
			want: map[Format]any{
				FormatMsgpack: map[any]any{int64(1): "a"},
				FormatCBOR:    map[any]any{uint64(1): "a"},
				FormatJSON:    map[string]any{"1": "a"},
			},
		},
		{
			name: "mixed keys",
			in:   map[any]any{"a": "x", 2: "b"},
			want: map[Format]any{
				FormatMsgpack: map[any]any{"a": "x", int64(2): "b"},
				FormatCBOR:    map[any]any{"a": "x", uint64(2): "b"},
			},
		},
		{
			name: "string keys in any map",
			in:   map[any]any{"a": map[any]any{"b": "c"}},
			want: map[Format]any{
				FormatMsgpack: map[string]any{"a": map[string]any{"b": "c"}},
				FormatCBOR:    map[string]any{"a": map[string]any{"b": "c"}},
			},
		},
		{
			name: "int keyed map nested under string keys",
			in:   map[string]any{"ports": map[int]string{80: "http"}},
			want: map[Format]any{
				FormatMsgpack: map[string]any{"ports": map[any]any{int64(80): "http"}},
				FormatCBOR:    map[string]any{"ports": map[any]any{uint64(80): "http"}},
				FormatJSON:    map[string]any{"ports": map[string]any{"80": "http"}},
			},
		},
	}

	for _, tc := range cases {
		for _, f := range formats {
			c := Value{Format: f}
			want, readable := tc.want[f]
			enc, err := c.Encode(tc.in)
			if !readable {
				if err == nil {
					t.Fatalf("%s/%s: Encode accepted a value it cannot read back: %q", tc.name, f, enc)
				}
				continue
			}
			if err != nil {
				t.Fatalf("%s/%s Encode: %v", tc.name, f, err)
			}
			got, err := c.Decode(enc)
			if err != nil {
				t.Fatalf("%s/%s Decode(%q): %v", tc.name, f, enc, err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("%s/%s got %#v want %#v", tc.name, f, got, want)
			}
		}
	}
}

func TestMsgpackPreservesBytesAndIntegers(t *testing.T) {
	c := Value{}
	in := map[string]any{"raw": []byte{0, 1, 2}, "n": int64(-7), "u": uint64(9)}
	enc, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("got %T want map[string]any", got)
	}
	if !reflect.DeepEqual(m["raw"], []byte{0, 1, 2}) {
		t.Fatalf("raw = %#v", m["raw"])
	}
	if m["n"] != int64(-7) {
		t.Fatalf("n = %#v want int64(-7)", m["n"])
	}
}

func TestDefaultFormatIsMsgpack(t *testing.T) {
	enc, err := Value{}.Encode("Acme")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(enc, "m1:") {
		t.Fatalf("got %q want msgpack envelope", enc)
	}
}

func TestDecodeReadsAnyFormat(t *testing.T) {
	enc, err := Value{Format: FormatCBOR}.Encode([]any{"a"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Value{Format: FormatJSON}.Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, []any{"a"}) {
		t.Fatalf("got %#v", got)
	}
}

// ==============================
// Numeric passthrough
// ==============================

func TestWholeFloatReadsBackAsInteger(t *testing.T) {
	enc, err := Value{}.Encode(1e6)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Value{}.Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	n, err := got.(Number).Int64()
	if err != nil || n != 1000000 {
		t.Fatalf("Int64() = %d, %v", n, err)
	}
	i, err := Convert[int](got)
	if err != nil || i != 1000000 {
		t.Fatalf("Convert[int] = %d, %v", i, err)
	}
}

func TestNumericPassthrough(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{42, "42"},
		{int8(-3), "-3"},
		{uint16(7), "7"},
		{int64(math.MaxInt64), "9223372036854775807"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
		{100.0, "100"},
		{1e6, "1000000"},
		{float32(1e6), "1000000"},
		{-2.5e9, "-2500000000"},
		{0.0001, "0.0001"},
		{0.0, "0"},
		{1e20, "1e+20"},
		{0.00001, "1e-05"},
		{"42", "42"},
		{"-0.5", "-0.5"},
		{"1e3", "1e3"},
		{Number("12"), "12"},
	}
	for _, tc := range cases {
		enc, err := Value{}.Encode(tc.in)
		if err != nil {
			t.Fatalf("Encode(%#v): %v", tc.in, err)
		}
		if enc != tc.want {
			t.Fatalf("Encode(%#v) = %q want %q", tc.in, enc, tc.want)
		}
		got, err := Value{}.Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%q): %v", enc, err)
		}
		if got != Number(tc.want) {
			t.Fatalf("Decode(%q) = %#v want Number(%q)", enc, got, tc.want)
		}
	}
}

func TestNonFiniteFloatsAreStructured(t *testing.T) {
	enc, err := Value{}.Encode(math.Inf(1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if IsNumericText(enc) {
		t.Fatalf("+Inf encoded as numeric text %q", enc)
	}
	got, err := Value{}.Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f, ok := got.(float64); !ok || !math.IsInf(f, 1) {
		t.Fatalf("got %#v want +Inf", got)
	}
}

func TestIsNumericText(t *testing.T) {
	yes := []string{"0", "-1", "+2", "3.", ".5", "1.25", "1e10", "1E-3", "-2.5e+7", "007"}
	no := []string{"", " 1", "1 ", "+", "-", ".", "e5", "1e", "1e+", "0x1f", "Inf", "NaN", "1_000", "1.2.3", "12a"}
	for _, s := range yes {
		if !IsNumericText(s) {
			t.Fatalf("IsNumericText(%q) = false want true", s)
		}
	}
	for _, s := range no {
		if IsNumericText(s) {
			t.Fatalf("IsNumericText(%q) = true want false", s)
		}
	}
}

// ==============================
// Corruption
// ==============================

func TestDecodeCorrupt(t *testing.T) {
	cases := []string{
		"Acme",
		"m1:%%%",
		"x1:AAAA",
		wire.Encode(FormatMsgpack, []byte{0xc1}), // never-used msgpack code
		wire.Encode(FormatJSON, []byte(`{"a":`)),
		wire.Encode(FormatProtobuf, []byte{0xff, 0xff, 0xff}),
	}
	for _, s := range cases {
		if _, err := (Value{}).Decode(s); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("Decode(%q) err=%v want ErrCorrupt", s, err)
		}
	}
}

func TestDecodeEnforcesMaxDecode(t *testing.T) {
	enc, err := Value{}.Encode(strings.Repeat("x", 64))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = (Value{MaxDecode: 16}).Decode(enc)
	if !errors.Is(err, ErrCorrupt) || !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrCorrupt and ErrTooLarge for oversized payload, got %v", err)
	}
	if _, err := (Value{MaxDecode: 1024}).Decode(enc); err != nil {
		t.Fatalf("Decode within limit: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatMsgpack,
		"msgpack":  FormatMsgpack,
		"CBOR":     FormatCBOR,
		"protobuf": FormatProtobuf,
		" json ":   FormatJSON,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
}
