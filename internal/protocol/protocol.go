// Package protocol is the entry point callers use to read and assign the
// sources of an index column and to push value changes into it. Loosely
// typed input is resolved here once and handed to the typed layers below.
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/gcbaptista/go-column-index/internal/catalog"
	"github.com/gcbaptista/go-column-index/internal/codec"
	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/internal/indexing"
	"github.com/gcbaptista/go-column-index/internal/metrics"
	"github.com/gcbaptista/go-column-index/internal/sources"
	"github.com/gcbaptista/go-column-index/model"
)

// IndexLookup finds the live IndexColumn for a qualified index name.
type IndexLookup interface {
	IndexColumn(name string) (*indexing.IndexColumn, error)
}

// Protocol dispatches update protocol calls to the source registry and to
// index columns.
type Protocol struct {
	catalog  *catalog.Catalog
	registry *sources.Registry
	indexes  IndexLookup
	metrics  *metrics.Metrics
}

func New(cat *catalog.Catalog, registry *sources.Registry, indexes IndexLookup, m *metrics.Metrics) *Protocol {
	return &Protocol{catalog: cat, registry: registry, indexes: indexes, metrics: m}
}

func (p *Protocol) indexColumn(name string) (*model.Column, error) {
	col, err := p.catalog.ColumnByName(name)
	if err != nil {
		return nil, err
	}
	if !col.IsIndex() {
		return nil, errors.NewNotIndexColumnError(name)
	}
	return col, nil
}

// Sources returns the source columns of the named index column.
func (p *Protocol) Sources(ixName string) ([]*model.Column, error) {
	ix, err := p.indexColumn(ixName)
	if err != nil {
		return nil, err
	}
	return p.registry.GetSources(ix.ID)
}

// SetSources replaces the source list of the named index column.
// Elements may be column ids (any integer), "Table.column" names, column
// handles, or SourceRef values.
func (p *Protocol) SetSources(ixName string, raw []any) error {
	ix, err := p.indexColumn(ixName)
	if err != nil {
		return err
	}

	refs := make([]model.SourceRef, 0, len(raw))
	for _, r := range raw {
		ref, err := ToSourceRef(r)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	if err := p.registry.SetSources(ix.ID, refs); err != nil {
		return err
	}
	p.metrics.RecordSourceChange(ixName)
	return nil
}

// SetSource sets a single source. A slice is treated as a full list.
func (p *Protocol) SetSource(ixName string, raw any) error {
	if raw == nil {
		return p.SetSources(ixName, []any{nil})
	}
	rv := reflect.ValueOf(raw)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return p.SetSources(ixName, items)
	}
	return p.SetSources(ixName, []any{raw})
}

// Set assigns to (row, section) of the named index column. raw is either
// a bare new value or a record with section, old_value and value keys.
// Old and new values are decoded with the type of the source column the
// section refers to.
func (p *Protocol) Set(ctx context.Context, ixName string, row model.RowID, raw any) error {
	ic, update, err := p.Prepare(ixName, row, raw)
	if err != nil {
		return err
	}
	return ic.Update(ctx, update.Row, update.Section, update.OldValue, update.NewValue)
}

// Prepare resolves the arguments of a Set call without applying it.
func (p *Protocol) Prepare(ixName string, row model.RowID, raw any) (*indexing.IndexColumn, indexing.RowUpdate, error) {
	args, err := codec.ParseUpdateArgs(raw)
	if err != nil {
		return nil, indexing.RowUpdate{}, err
	}
	section, rawOld, rawNew := args.Resolve()

	ix, err := p.indexColumn(ixName)
	if err != nil {
		return nil, indexing.RowUpdate{}, err
	}
	srcs, err := p.registry.GetSources(ix.ID)
	if err != nil {
		return nil, indexing.RowUpdate{}, err
	}
	source, err := sourceForSection(ix, srcs, section)
	if err != nil {
		return nil, indexing.RowUpdate{}, err
	}

	oldValue, err := codec.Decode(rawOld, source.Type, source.Vector)
	if err != nil {
		return nil, indexing.RowUpdate{}, fmt.Errorf("old_value: %w", err)
	}
	newValue, err := codec.Decode(rawNew, source.Type, source.Vector)
	if err != nil {
		return nil, indexing.RowUpdate{}, fmt.Errorf("value: %w", err)
	}

	ic, err := p.indexes.IndexColumn(ixName)
	if err != nil {
		return nil, indexing.RowUpdate{}, err
	}
	return ic, indexing.RowUpdate{Row: row, Section: section, OldValue: oldValue, NewValue: newValue}, nil
}

// sourceForSection picks the source column whose type governs decoding.
func sourceForSection(ix *model.Column, srcs []*model.Column, section model.Section) (*model.Column, error) {
	switch {
	case len(srcs) == 0:
		return nil, errors.NewNoSourcesError(ix.FullName())
	case len(srcs) == 1:
		return srcs[0], nil
	case section == 0 || int(section) > len(srcs):
		return nil, errors.NewInvalidSectionError(ix.FullName(), uint32(section), len(srcs))
	}
	return srcs[section-1], nil
}

// ToSourceRef converts a loosely typed source reference.
func ToSourceRef(raw any) (model.SourceRef, error) {
	switch r := raw.(type) {
	case model.SourceRef:
		return r, nil
	case *model.Column:
		return model.ByHandle{Column: r}, nil
	case model.ColumnID:
		return model.ByID(r), nil
	case string:
		return model.ByName(r), nil
	case json.Number:
		id, err := r.Int64()
		if err != nil || id <= 0 || id > math.MaxUint32 {
			return nil, errors.NewUnresolvedSourceError(r.String())
		}
		return model.ByID(id), nil
	case float64:
		if r != math.Trunc(r) || r <= 0 || r > math.MaxUint32 {
			return nil, errors.NewUnresolvedSourceError(fmt.Sprintf("%v", r))
		}
		return model.ByID(r), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if id := rv.Int(); id > 0 && id <= math.MaxUint32 {
			return model.ByID(id), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if id := rv.Uint(); id > 0 && id <= math.MaxUint32 {
			return model.ByID(id), nil
		}
	}
	return nil, errors.NewUnresolvedSourceError(fmt.Sprintf("%v", raw))
}
