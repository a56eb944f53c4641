// Package catalog keeps the tables and columns of a database and hands out
// column identifiers. It is passed explicitly to whoever needs to resolve
// columns; there is no process-wide catalog.
package catalog

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/model"
)

// IndexOptions are the lexicon settings of a new index column.
type IndexOptions struct {
	Tokenizer    string
	WithPosition bool
	Normalize    bool
}

// Catalog is the schema of one database.
//
// Every lookup returns a copy; callers change the schema only through
// Catalog methods.
type Catalog struct {
	mu      sync.RWMutex
	id      string
	tables  map[string]*model.Table
	columns map[model.ColumnID]*model.Column
	byName  map[string]model.ColumnID
	nextID  model.ColumnID
}

func New() *Catalog {
	return &Catalog{
		id:      uuid.New().String(),
		tables:  make(map[string]*model.Table),
		columns: make(map[model.ColumnID]*model.Column),
		byName:  make(map[string]model.ColumnID),
		nextID:  1,
	}
}

// ID identifies the database this catalog belongs to.
func (c *Catalog) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

func validateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewValidationError(field, "must not be empty")
	}
	if strings.ContainsAny(name, ". /") {
		return errors.NewValidationError(field, fmt.Sprintf("'%s' must not contain '.', '/' or spaces", name))
	}
	return nil
}

// CreateTable registers an empty table.
func (c *Catalog) CreateTable(name string) (model.Table, error) {
	if err := validateName("name", name); err != nil {
		return model.Table{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; exists {
		return model.Table{}, errors.NewTableAlreadyExistsError(name)
	}
	table := &model.Table{Name: name, Columns: []model.ColumnID{}}
	c.tables[name] = table
	return copyTable(table), nil
}

// Table returns the table called name.
func (c *Catalog) Table(name string) (model.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table, ok := c.tables[name]
	if !ok {
		return model.Table{}, errors.NewTableNotFoundError(name)
	}
	return copyTable(table), nil
}

// Tables returns every table sorted by name.
func (c *Catalog) Tables() []model.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Table, 0, len(c.tables))
	for _, table := range c.tables {
		out = append(out, copyTable(table))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AllocateRow reserves the next row id of a table. Row ids start at 1.
func (c *Catalog) AllocateRow(tableName string) (model.RowID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, ok := c.tables[tableName]
	if !ok {
		return 0, errors.NewTableNotFoundError(tableName)
	}
	table.NextRow++
	return table.NextRow, nil
}

// TouchRow makes sure row counts as allocated in its table.
func (c *Catalog) TouchRow(tableName string, row model.RowID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, ok := c.tables[tableName]
	if !ok {
		return errors.NewTableNotFoundError(tableName)
	}
	if row > table.NextRow {
		table.NextRow = row
	}
	return nil
}

// CreateColumn adds a value column. For TypeReference columns rangeTable
// names the referenced table; it is ignored for other types.
func (c *Catalog) CreateColumn(tableName, name string, dt model.DataType, rangeTable string, vector bool) (*model.Column, error) {
	if err := validateName("name", name); err != nil {
		return nil, err
	}
	if !dt.IsValid() {
		return nil, errors.NewValidationError("type", fmt.Sprintf("unknown data type '%s'", dt))
	}
	if dt != model.TypeReference {
		rangeTable = ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if dt == model.TypeReference {
		if rangeTable == "" {
			return nil, errors.NewValidationError("range", "reference columns need a referenced table")
		}
		if _, ok := c.tables[rangeTable]; !ok {
			return nil, errors.NewTableNotFoundError(rangeTable)
		}
	}

	return c.addColumnLocked(&model.Column{
		Name:   name,
		Table:  tableName,
		Kind:   model.KindFor(dt, vector),
		Type:   dt,
		Range:  rangeTable,
		Vector: vector,
	})
}

// CreateIndexColumn adds an index column to a lexicon table. targetTable is
// the table whose rows the index points at. The new column has no sources.
func (c *Catalog) CreateIndexColumn(tableName, name, targetTable string, opts IndexOptions) (*model.Column, error) {
	if err := validateName("name", name); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[targetTable]; !ok {
		return nil, errors.NewTableNotFoundError(targetTable)
	}

	return c.addColumnLocked(&model.Column{
		Name:         name,
		Table:        tableName,
		Kind:         model.KindIndex,
		Type:         model.TypeReference,
		Range:        targetTable,
		Tokenizer:    opts.Tokenizer,
		WithPosition: opts.WithPosition,
		Normalize:    opts.Normalize,
	})
}

func (c *Catalog) addColumnLocked(col *model.Column) (*model.Column, error) {
	table, ok := c.tables[col.Table]
	if !ok {
		return nil, errors.NewTableNotFoundError(col.Table)
	}
	fullName := col.FullName()
	if _, exists := c.byName[fullName]; exists {
		return nil, errors.NewColumnAlreadyExistsError(fullName)
	}

	col.ID = c.nextID
	c.nextID++
	c.columns[col.ID] = col
	c.byName[fullName] = col.ID
	table.Columns = append(table.Columns, col.ID)
	return copyColumn(col), nil
}

// RemoveColumn drops a column. Index columns listing it as a source keep
// the dangling id until their sources are replaced.
func (c *Catalog) RemoveColumn(fullName string) (*model.Column, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.byName[fullName]
	if !ok {
		return nil, errors.NewColumnNotFoundError(fullName)
	}
	col := c.columns[id]
	delete(c.columns, id)
	delete(c.byName, fullName)

	if table, ok := c.tables[col.Table]; ok {
		kept := table.Columns[:0]
		for _, cid := range table.Columns {
			if cid != id {
				kept = append(kept, cid)
			}
		}
		table.Columns = kept
	}
	return copyColumn(col), nil
}

// Column looks a column up by id.
func (c *Catalog) Column(id model.ColumnID) (*model.Column, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	col, ok := c.columns[id]
	if !ok {
		return nil, errors.NewColumnNotFoundError(model.ByID(id).String())
	}
	return copyColumn(col), nil
}

// ColumnByName looks a column up by its "Table.column" name.
func (c *Catalog) ColumnByName(fullName string) (*model.Column, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byName[fullName]
	if !ok {
		return nil, errors.NewColumnNotFoundError(fullName)
	}
	return copyColumn(c.columns[id]), nil
}

// Columns returns the columns of a table in creation order.
func (c *Catalog) Columns(tableName string) ([]*model.Column, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table, ok := c.tables[tableName]
	if !ok {
		return nil, errors.NewTableNotFoundError(tableName)
	}
	out := make([]*model.Column, 0, len(table.Columns))
	for _, id := range table.Columns {
		out = append(out, copyColumn(c.columns[id]))
	}
	return out, nil
}

// IndexColumns returns every index column ordered by id.
func (c *Catalog) IndexColumns() []*model.Column {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*model.Column
	for _, col := range c.columns {
		if col.IsIndex() {
			out = append(out, copyColumn(col))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve turns a source reference into the column it names.
// Anything that does not name an existing column is an UnresolvedSourceError.
func (c *Catalog) Resolve(ref model.SourceRef) (*model.Column, error) {
	if ref == nil {
		return nil, errors.NewUnresolvedSourceError("<nil>")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var id model.ColumnID
	switch r := ref.(type) {
	case model.ByID:
		id = model.ColumnID(r)
	case model.ByName:
		var ok bool
		if id, ok = c.byName[string(r)]; !ok {
			return nil, errors.NewUnresolvedSourceError(r.String())
		}
	case model.ByHandle:
		if r.Column == nil {
			return nil, errors.NewUnresolvedSourceError(r.String())
		}
		id = r.Column.ID
	default:
		return nil, errors.NewUnresolvedSourceError(ref.String())
	}

	col, ok := c.columns[id]
	if !ok {
		return nil, errors.NewUnresolvedSourceError(ref.String())
	}
	return copyColumn(col), nil
}

// ReachableTables returns the tables whose rows an index over table can
// point at: the table itself plus every table one of its reference columns
// points to.
func (c *Catalog) ReachableTables(tableName string) map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := map[string]bool{tableName: true}
	table, ok := c.tables[tableName]
	if !ok {
		return out
	}
	for _, id := range table.Columns {
		col := c.columns[id]
		if col.Kind != model.KindIndex && col.Type == model.TypeReference && col.Range != "" {
			out[col.Range] = true
		}
	}
	return out
}

// SourceInfo returns the stored source bulk of an index column.
func (c *Catalog) SourceInfo(id model.ColumnID) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	col, err := c.indexColumnLocked(id)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), col.Sources...), nil
}

// SetSourceInfo replaces the stored source bulk of an index column.
func (c *Catalog) SetSourceInfo(id model.ColumnID, bulk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	col, err := c.indexColumnLocked(id)
	if err != nil {
		return err
	}
	col.Sources = append([]byte(nil), bulk...)
	return nil
}

func (c *Catalog) indexColumnLocked(id model.ColumnID) (*model.Column, error) {
	col, ok := c.columns[id]
	if !ok {
		return nil, errors.NewColumnNotFoundError(model.ByID(id).String())
	}
	if !col.IsIndex() {
		return nil, errors.NewNotIndexColumnError(col.FullName())
	}
	return col, nil
}

// gobCatalogData is a helper struct for Gob encoding/decoding Catalog data.
// It excludes the mutex and the name lookup, which is rebuilt on decode.
type gobCatalogData struct {
	ID      string
	Tables  map[string]*model.Table
	Columns map[model.ColumnID]*model.Column
	NextID  model.ColumnID
}

// GobEncode implements the gob.GobEncoder interface for Catalog.
func (c *Catalog) GobEncode() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var buf bytes.Buffer
	data := gobCatalogData{ID: c.id, Tables: c.tables, Columns: c.columns, NextID: c.nextID}
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("failed to gob encode catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for Catalog.
func (c *Catalog) GobDecode(data []byte) error {
	decoded := gobCatalogData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to gob decode catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.id = decoded.ID
	c.tables = decoded.Tables
	c.columns = decoded.Columns
	c.nextID = decoded.NextID
	if c.tables == nil {
		c.tables = make(map[string]*model.Table)
	}
	if c.columns == nil {
		c.columns = make(map[model.ColumnID]*model.Column)
	}
	if c.nextID == 0 {
		c.nextID = 1
	}
	c.byName = make(map[string]model.ColumnID, len(c.columns))
	for id, col := range c.columns {
		c.byName[col.FullName()] = id
	}
	return nil
}

func copyTable(t *model.Table) model.Table {
	out := *t
	out.Columns = append([]model.ColumnID{}, t.Columns...)
	return out
}

func copyColumn(col *model.Column) *model.Column {
	out := *col
	out.Sources = append([]byte(nil), col.Sources...)
	return &out
}
