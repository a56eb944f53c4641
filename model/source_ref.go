package model

import "fmt"

// SourceRef points at a column that feeds an index column.
// It is one of ByID, ByName or ByHandle and is resolved to a ColumnID
// by the source registry before anything is stored.
type SourceRef interface {
	isSourceRef()
	String() string
}

// ByID references a column by its catalog identifier.
type ByID ColumnID

// ByName references a column by its qualified name, e.g. "Bookmarks.title".
type ByName string

// ByHandle references a column through a handle obtained from the catalog.
type ByHandle struct {
	Column *Column
}

func (ByID) isSourceRef()     {}
func (ByName) isSourceRef()   {}
func (ByHandle) isSourceRef() {}

func (r ByID) String() string   { return fmt.Sprintf("#%d", uint32(r)) }
func (r ByName) String() string { return string(r) }

func (r ByHandle) String() string {
	if r.Column == nil {
		return "<nil column>"
	}
	return r.Column.FullName()
}
