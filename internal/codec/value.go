// Package codec converts between loosely typed values supplied by callers,
// typed Values, and the compact binary "bulk" form stored by columns.
package codec

import (
	"strconv"
	"time"

	"github.com/gcbaptista/go-column-index/model"
)

// Value is a decoded scalar or vector of a single data type.
//
// Elements hold canonical Go types: bool for Bool, int64 for signed
// integers, uint64 for unsigned integers and references, float64 for Float,
// time.Time for Time and string for the text types. A scalar has exactly one
// element. A nil *Value means "absent".
type Value struct {
	Type     model.DataType
	Vector   bool
	Elements []any
}

// NewScalar builds a scalar value from an already canonical element.
func NewScalar(t model.DataType, element any) *Value {
	return &Value{Type: t, Elements: []any{element}}
}

// NewText is a shorthand for a scalar Text value.
func NewText(s string) *Value {
	return NewScalar(model.TypeText, s)
}

// IsEmpty reports whether v produces no postings: absent, no elements,
// or a scalar empty string.
func (v *Value) IsEmpty() bool {
	if v == nil || len(v.Elements) == 0 {
		return true
	}
	if !v.Vector && len(v.Elements) == 1 {
		if s, ok := v.Elements[0].(string); ok && s == "" {
			return true
		}
	}
	return false
}

// Len returns the number of elements, 0 for an absent value.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Elements)
}

// Strings returns the canonical string form of every element.
// These strings are the keys of exact-match indexes.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	out := make([]string, 0, len(v.Elements))
	for _, e := range v.Elements {
		out = append(out, elementString(e))
	}
	return out
}

// Interface returns the element for scalars and the element slice for vectors.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	if v.Vector {
		return v.Elements
	}
	if len(v.Elements) == 0 {
		return nil
	}
	return v.Elements[0]
}

func elementString(e any) string {
	switch x := e.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}
