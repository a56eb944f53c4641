package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/model"
)

// timeLayouts are tried in order when a string is assigned to a Time column.
var timeLayouts = []string{
	"2006/01/02 15:04:05.999999",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006/01/02",
	"2006-01-02",
}

// Decode coerces raw into a Value of the declared type.
//
// A nil raw value decodes to nil (absent). Slices decode element-wise and
// are only accepted for vector columns; a single element assigned to a
// vector column becomes a one-element vector.
func Decode(raw any, t model.DataType, vector bool) (*Value, error) {
	if raw == nil {
		return nil, nil
	}
	if !t.IsValid() {
		return nil, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("unknown data type"))
	}
	if v, ok := raw.(*Value); ok {
		return convertValue(v, t, vector)
	}

	if items, ok := sliceElements(raw); ok {
		if !vector {
			return nil, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("vector assigned to scalar column"))
		}
		value := &Value{Type: t, Vector: true, Elements: make([]any, 0, len(items))}
		for _, item := range items {
			e, err := coerceElement(item, t)
			if err != nil {
				return nil, err
			}
			value.Elements = append(value.Elements, e)
		}
		return value, nil
	}

	e, err := coerceElement(raw, t)
	if err != nil {
		return nil, err
	}
	return &Value{Type: t, Vector: vector, Elements: []any{e}}, nil
}

func convertValue(v *Value, t model.DataType, vector bool) (*Value, error) {
	if v == nil {
		return nil, nil
	}
	if v.Type == t && v.Vector == vector {
		return v, nil
	}
	if v.Vector && !vector {
		return nil, errors.NewTypeMismatchError(string(t), v.Interface(), fmt.Errorf("vector assigned to scalar column"))
	}
	out := &Value{Type: t, Vector: vector, Elements: make([]any, 0, len(v.Elements))}
	for _, item := range v.Elements {
		e, err := coerceElement(item, t)
		if err != nil {
			return nil, err
		}
		out.Elements = append(out.Elements, e)
	}
	return out, nil
}

// sliceElements unpacks any slice or array except []byte.
func sliceElements(raw any) ([]any, bool) {
	switch x := raw.(type) {
	case []byte:
		return nil, false
	case []any:
		return x, true
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return items, true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func coerceElement(raw any, t model.DataType) (any, error) {
	switch {
	case t == model.TypeBool:
		return coerceBool(raw, t)
	case t == model.TypeFloat:
		return coerceFloat(raw, t)
	case t == model.TypeTime:
		return coerceTime(raw, t)
	case t.IsText():
		return coerceText(raw, t)
	case isSigned(t):
		return coerceInt(raw, t)
	default:
		return coerceUint(raw, t)
	}
}

func isSigned(t model.DataType) bool {
	switch t {
	case model.TypeInt8, model.TypeInt16, model.TypeInt32, model.TypeInt64:
		return true
	}
	return false
}

func bitSize(t model.DataType) int {
	if t == model.TypeReference {
		return 32
	}
	return t.FixedSize() * 8
}

func coerceBool(raw any, t model.DataType) (any, error) {
	switch x := raw.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return nil, errors.NewTypeMismatchError(string(t), raw, err)
		}
		return b, nil
	}
	return nil, errors.NewTypeMismatchError(string(t), raw, nil)
}

func coerceInt(raw any, t model.DataType) (any, error) {
	var n int64
	switch x := raw.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, errors.NewTypeMismatchError(string(t), raw, err)
		}
		n = parsed
	case json.Number:
		parsed, err := x.Int64()
		if err != nil {
			return nil, errors.NewTypeMismatchError(string(t), raw, err)
		}
		n = parsed
	default:
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			u := rv.Uint()
			if u > math.MaxInt64 {
				return nil, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("out of range"))
			}
			n = int64(u)
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return nil, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("not an integral number"))
			}
			n = int64(f)
		default:
			return nil, errors.NewTypeMismatchError(string(t), raw, nil)
		}
	}

	bits := bitSize(t)
	if bits < 64 {
		limit := int64(1) << (bits - 1)
		if n < -limit || n >= limit {
			return nil, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("out of range"))
		}
	}
	return n, nil
}

func coerceUint(raw any, t model.DataType) (any, error) {
	var n uint64
	switch x := raw.(type) {
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, errors.NewTypeMismatchError(string(t), raw, err)
		}
		n = parsed
	case json.Number:
		parsed, err := strconv.ParseUint(x.String(), 10, 64)
		if err != nil {
			return nil, errors.NewTypeMismatchError(string(t), raw, err)
		}
		n = parsed
	default:
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i := rv.Int()
			if i < 0 {
				return nil, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("negative value"))
			}
			n = uint64(i)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			n = rv.Uint()
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				return nil, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("not a non-negative integral number"))
			}
			n = uint64(f)
		default:
			return nil, errors.NewTypeMismatchError(string(t), raw, nil)
		}
	}

	bits := bitSize(t)
	if bits < 64 && n >= uint64(1)<<bits {
		return nil, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("out of range"))
	}
	return n, nil
}

func coerceFloat(raw any, t model.DataType) (any, error) {
	switch x := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, errors.NewTypeMismatchError(string(t), raw, err)
		}
		return f, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, errors.NewTypeMismatchError(string(t), raw, err)
		}
		return f, nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, errors.NewTypeMismatchError(string(t), raw, nil)
}

// coerceTime truncates to microseconds, the resolution Time columns
// store, so a decoded value equals its bulk round trip.
func coerceTime(raw any, t model.DataType) (any, error) {
	v, err := parseTime(raw, t)
	if err != nil {
		return nil, err
	}
	return v.Truncate(time.Microsecond), nil
}

func parseTime(raw any, t model.DataType) (time.Time, error) {
	switch x := raw.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("unrecognized time format"))
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return time.Unix(i, 0), nil
		}
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, errors.NewTypeMismatchError(string(t), raw, err)
		}
		return unixFloat(f), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Unix(rv.Int(), 0), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Unix(int64(rv.Uint()), 0), nil
	case reflect.Float32, reflect.Float64:
		return unixFloat(rv.Float()), nil
	}
	return time.Time{}, errors.NewTypeMismatchError(string(t), raw, nil)
}

// unixFloat keeps microsecond precision, the resolution Time columns store.
func unixFloat(f float64) time.Time {
	return time.UnixMicro(int64(math.Round(f * 1e6)))
}

func coerceText(raw any, t model.DataType) (any, error) {
	var s string
	switch x := raw.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	case bool:
		s = strconv.FormatBool(x)
	case fmt.Stringer:
		s = x.String()
	default:
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			s = strconv.FormatInt(rv.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			s = strconv.FormatUint(rv.Uint(), 10)
		case reflect.Float32, reflect.Float64:
			s = strconv.FormatFloat(rv.Float(), 'g', -1, 64)
		default:
			return nil, errors.NewTypeMismatchError(string(t), raw, nil)
		}
	}

	if len(s) > t.TextLimit() {
		return nil, errors.NewTypeMismatchError(string(t), raw, fmt.Errorf("text longer than %d bytes", t.TextLimit()))
	}
	return s, nil
}
