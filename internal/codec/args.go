package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/model"
)

// Keys recognized in a structured update record.
const (
	KeySection  = "section"
	KeyOldValue = "old_value"
	KeyValue    = "value"
)

// UpdateArgs is what a caller passes when assigning to an index column row:
// either a bare value (Scalar) or a record (Structured).
type UpdateArgs interface {
	// Resolve returns the section, the old raw value and the new raw value,
	// applying the defaults (section 1, no old value).
	Resolve() (model.Section, any, any)
}

// Scalar is a bare new value: default section, nothing to remove.
type Scalar struct {
	Value any
}

// Structured carries an explicit section and old value.
type Structured struct {
	Section  model.Section
	OldValue any
	Value    any
}

func (s Scalar) Resolve() (model.Section, any, any) {
	return model.DefaultSection, nil, s.Value
}

func (s Structured) Resolve() (model.Section, any, any) {
	return s.Section, s.OldValue, s.Value
}

// ParseUpdateArgs inspects raw once and returns the matching UpdateArgs.
// Any map is treated as a structured record; keys other than section,
// old_value and value are rejected.
func ParseUpdateArgs(raw any) (UpdateArgs, error) {
	var record map[string]any
	switch x := raw.(type) {
	case UpdateArgs:
		return x, nil
	case map[string]any:
		record = x
	case map[string]string:
		record = make(map[string]any, len(x))
		for k, v := range x {
			record[k] = v
		}
	default:
		return Scalar{Value: raw}, nil
	}

	var unknown []string
	for key := range record {
		switch key {
		case KeySection, KeyOldValue, KeyValue:
		default:
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.NewValidationError("", fmt.Sprintf("unknown update keys: %s (available: section, old_value, value)", strings.Join(unknown, ", ")))
	}

	args := Structured{
		Section:  model.DefaultSection,
		OldValue: record[KeyOldValue],
		Value:    record[KeyValue],
	}
	if rawSection, ok := record[KeySection]; ok && rawSection != nil {
		section, err := coerceUint(rawSection, model.TypeUInt32)
		if err != nil {
			return nil, err
		}
		args.Section = model.Section(section.(uint64))
	}
	return args, nil
}
