package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/model"
)

// Encode converts v into its bulk form.
//
// Fixed-size types are written little-endian, one fixed-width slot per
// element. A scalar text is written as its raw bytes; text vectors prefix
// each element with its uvarint length. Time is stored as microseconds
// since the Unix epoch. An absent value encodes to nil.
func Encode(v *Value) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	if v.Type.IsText() {
		if !v.Vector {
			if len(v.Elements) == 0 {
				return nil, nil
			}
			s, ok := v.Elements[0].(string)
			if !ok {
				return nil, errors.NewTypeMismatchError(string(v.Type), v.Elements[0], nil)
			}
			return []byte(s), nil
		}
		var buf []byte
		for _, e := range v.Elements {
			s, ok := e.(string)
			if !ok {
				return nil, errors.NewTypeMismatchError(string(v.Type), e, nil)
			}
			buf = binary.AppendUvarint(buf, uint64(len(s)))
			buf = append(buf, s...)
		}
		return buf, nil
	}

	width := v.Type.FixedSize()
	if width == 0 {
		return nil, errors.NewTypeMismatchError(string(v.Type), v.Interface(), fmt.Errorf("unknown data type"))
	}
	buf := make([]byte, 0, width*len(v.Elements))
	for _, e := range v.Elements {
		bits, err := elementBits(e, v.Type)
		if err != nil {
			return nil, err
		}
		var slot [8]byte
		binary.LittleEndian.PutUint64(slot[:], bits)
		buf = append(buf, slot[:width]...)
	}
	return buf, nil
}

func elementBits(e any, t model.DataType) (uint64, error) {
	switch x := e.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int64:
		return uint64(x), nil
	case uint64:
		return x, nil
	case float64:
		return math.Float64bits(x), nil
	case time.Time:
		return uint64(x.UnixMicro()), nil
	}
	return 0, errors.NewTypeMismatchError(string(t), e, nil)
}

// DecodeBulk is the inverse of Encode. Empty input decodes to an absent
// scalar, or to an empty vector for vector columns.
func DecodeBulk(b []byte, t model.DataType, vector bool) (*Value, error) {
	if len(b) == 0 {
		if vector {
			return &Value{Type: t, Vector: true, Elements: []any{}}, nil
		}
		return nil, nil
	}

	if t.IsText() {
		if !vector {
			return NewScalar(t, string(b)), nil
		}
		v := &Value{Type: t, Vector: true}
		for len(b) > 0 {
			n, read := binary.Uvarint(b)
			if read <= 0 || uint64(len(b)-read) < n {
				return nil, errors.NewTypeMismatchError(string(t), b, fmt.Errorf("truncated text vector"))
			}
			b = b[read:]
			v.Elements = append(v.Elements, string(b[:n]))
			b = b[n:]
		}
		return v, nil
	}

	width := t.FixedSize()
	if width == 0 {
		return nil, errors.NewTypeMismatchError(string(t), b, fmt.Errorf("unknown data type"))
	}
	if len(b)%width != 0 || (!vector && len(b) != width) {
		return nil, errors.NewTypeMismatchError(string(t), b, fmt.Errorf("bulk of %d bytes does not fit %d-byte slots", len(b), width))
	}

	v := &Value{Type: t, Vector: vector, Elements: make([]any, 0, len(b)/width)}
	for off := 0; off < len(b); off += width {
		var slot [8]byte
		copy(slot[:], b[off:off+width])
		v.Elements = append(v.Elements, elementFromBits(binary.LittleEndian.Uint64(slot[:]), t, width))
	}
	return v, nil
}

func elementFromBits(bits uint64, t model.DataType, width int) any {
	switch {
	case t == model.TypeBool:
		return bits != 0
	case t == model.TypeFloat:
		return math.Float64frombits(bits)
	case t == model.TypeTime:
		return time.UnixMicro(int64(bits))
	case isSigned(t):
		// sign-extend from the slot width
		shift := uint(64 - width*8)
		return int64(bits<<shift) >> shift
	default:
		return bits
	}
}
