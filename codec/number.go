package codec

import (
	"math"
	"reflect"
	"strconv"
)

// Number is numeric text read back from storage. It is never cast
// implicitly; callers pick the representation they need.
type Number string

func (n Number) String() string { return string(n) }

func (n Number) Int64() (int64, error) { return strconv.ParseInt(string(n), 10, 64) }

func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

// Numeric returns the plain text form of v when v is numeric: any integer
// or finite float kind, a Number, or a string holding a decimal number.
func Numeric(v any) (string, bool) {
	switch x := v.(type) {
	case nil, bool:
		return "", false
	case string:
		return x, IsNumericText(x)
	case Number:
		return string(x), IsNumericText(string(x))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false
		}
		bits := 64
		if rv.Kind() == reflect.Float32 {
			bits = 32
		}
		return formatFloat(f, bits), true
	case reflect.String:
		s := rv.String()
		return s, IsNumericText(s)
	}
	return "", false
}

// formatFloat keeps integral and ordinary magnitudes in positional form so
// that 1e6 reads back as an integer. Exponents are used only outside it.
func formatFloat(f float64, bits int) string {
	if a := math.Abs(f); a == 0 || (a >= 1e-4 && a < 1e15) {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// IsNumericText reports whether s is a decimal number:
//
//	[+-]? (digits [. digits?] | . digits) ([eE] [+-]? digits)?
//
// Surrounding whitespace, hex, "Inf" and "NaN" are rejected.
func IsNumericText(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	mantissa := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissa++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			mantissa++
		}
	}
	if mantissa == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
