package codec

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
)

// Convert turns a decoded setting value into T.
//
// Values already of type T are returned as is. A Number is parsed according
// to T's kind. Anything else is re-marshalled through msgpack into T, which
// maps decoded map[string]any graphs back onto structs.
func Convert[T any](v any) (T, error) {
	var out T
	if v == nil {
		return out, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	if n, ok := v.(Number); ok {
		err := setNumber(reflect.ValueOf(&out).Elem(), n)
		if err != nil {
			return out, fmt.Errorf("settings: convert %q to %T: %w", string(n), out, err)
		}
		return out, nil
	}
	b, err := msgpack.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("settings: convert %T to %T: %w", v, out, err)
	}
	if err := msgpack.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("settings: convert %T to %T: %w", v, out, err)
	}
	return out, nil
}

func setNumber(dst reflect.Value, n Number) error {
	s := string(n)
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	case reflect.String:
		dst.SetString(s)
	default:
		return fmt.Errorf("unsupported kind %s", dst.Kind())
	}
	return nil
}
