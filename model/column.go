package model

import (
	"fmt"
	"strings"
)

// ColumnKind tells how a column stores its values.
type ColumnKind string

const (
	KindFixSize ColumnKind = "fix_size"
	KindVarSize ColumnKind = "var_size"
	KindIndex   ColumnKind = "index"
)

// Table is a named set of rows. Columns belong to exactly one table.
type Table struct {
	Name    string     `json:"name"`
	Columns []ColumnID `json:"columns"`
	NextRow RowID      `json:"next_row"`
}

// Column describes a typed per-row attribute of a table.
//
// For index columns Type is TypeReference and Range names the target table:
// the table whose rows are indexed. Sources holds the ordered source list
// as fixed-width little-endian column IDs, the same layout that is persisted.
type Column struct {
	ID     ColumnID   `json:"id"`
	Name   string     `json:"name"`
	Table  string     `json:"table"`
	Kind   ColumnKind `json:"kind"`
	Type   DataType   `json:"type"`
	Range  string     `json:"range,omitempty"`
	Vector bool       `json:"vector"`

	Tokenizer    string `json:"tokenizer,omitempty"`
	WithPosition bool   `json:"with_position,omitempty"`
	Normalize    bool   `json:"normalize,omitempty"`
	Sources      []byte `json:"-"`
}

// FullName returns the column name qualified by its table, e.g. "Bookmarks.title".
func (c *Column) FullName() string {
	return c.Table + "." + c.Name
}

func (c *Column) IsIndex() bool {
	return c.Kind == KindIndex
}

func (c *Column) IsVector() bool {
	return c.Vector && c.Kind != KindIndex
}

// IsScalar reports whether the column holds a single value per row.
func (c *Column) IsScalar() bool {
	return !c.Vector && c.Kind != KindIndex
}

// String renders the column the way it is shown in logs and the admin API.
func (c *Column) String() string {
	var class string
	switch c.Kind {
	case KindFixSize:
		class = "FixSizeColumn"
	case KindVarSize:
		class = "VarSizeColumn"
	default:
		class = "IndexColumn"
	}

	rangeName := string(c.Type)
	if c.Range != "" {
		rangeName = c.Range
	}

	var flags []string
	if c.Vector {
		flags = append(flags, "COLUMN_VECTOR")
	}
	if c.Kind == KindIndex {
		flags = append(flags, "COLUMN_INDEX")
		if c.WithPosition {
			flags = append(flags, "WITH_POSITION")
		}
	}

	return fmt.Sprintf("#<%s id: <%d>, name: <%s>, table: <%s>, range: <%s>, flags: <%s>>",
		class, c.ID, c.FullName(), c.Table, rangeName, strings.Join(flags, "|"))
}

// KindFor picks the storage kind for a value column of the given type.
func KindFor(t DataType, vector bool) ColumnKind {
	if vector || t.FixedSize() == 0 {
		return KindVarSize
	}
	return KindFixSize
}

// SplitFullName splits "Table.column" into its parts.
func SplitFullName(name string) (table, column string, ok bool) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return "", "", false
	}
	return name[:idx], name[idx+1:], true
}
