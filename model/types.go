package model

import "fmt"

// ColumnID is the stable identifier the catalog assigns to a column.
// Zero is never assigned.
type ColumnID uint32

// RowID identifies a row within a table. Row IDs start at 1.
type RowID uint32

// Section distinguishes which source column produced a posting.
// Sections are 1-based; 1 is used when an index has a single source.
type Section uint32

// DefaultSection is the section used when the caller does not provide one.
const DefaultSection Section = 1

// DataType is the declared value type of a column.
type DataType string

const (
	TypeBool      DataType = "Bool"
	TypeInt8      DataType = "Int8"
	TypeInt16     DataType = "Int16"
	TypeInt32     DataType = "Int32"
	TypeInt64     DataType = "Int64"
	TypeUInt8     DataType = "UInt8"
	TypeUInt16    DataType = "UInt16"
	TypeUInt32    DataType = "UInt32"
	TypeUInt64    DataType = "UInt64"
	TypeFloat     DataType = "Float"
	TypeTime      DataType = "Time"
	TypeShortText DataType = "ShortText"
	TypeText      DataType = "Text"
	TypeLongText  DataType = "LongText"
	// TypeReference holds the RowID of a row in another table.
	// The referenced table is kept in Column.Range.
	TypeReference DataType = "Reference"
)

var fixedSizes = map[DataType]int{
	TypeBool:      1,
	TypeInt8:      1,
	TypeInt16:     2,
	TypeInt32:     4,
	TypeInt64:     8,
	TypeUInt8:     1,
	TypeUInt16:    2,
	TypeUInt32:    4,
	TypeUInt64:    8,
	TypeFloat:     8,
	TypeTime:      8,
	TypeReference: 4,
}

// textLimits holds the maximum byte length of each text type.
var textLimits = map[DataType]int{
	TypeShortText: 1 << 12,
	TypeText:      1 << 16,
	TypeLongText:  1 << 31,
}

// IsValid reports whether t is a known data type.
func (t DataType) IsValid() bool {
	_, fixed := fixedSizes[t]
	_, text := textLimits[t]
	return fixed || text
}

// IsText reports whether t is one of the text types.
func (t DataType) IsText() bool {
	_, ok := textLimits[t]
	return ok
}

// FixedSize returns the encoded width of t, or 0 for variable-size types.
func (t DataType) FixedSize() int {
	return fixedSizes[t]
}

// TextLimit returns the maximum byte length accepted for a text type.
func (t DataType) TextLimit() int {
	return textLimits[t]
}

// ParseDataType converts a type name (case-sensitive, as in "Int32") into a DataType.
func ParseDataType(name string) (DataType, error) {
	t := DataType(name)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown data type '%s'", name)
	}
	return t, nil
}
