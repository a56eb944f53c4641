// Package sources reads and replaces the ordered source list of index columns.
package sources

import (
	"fmt"
	"log/slog"

	"github.com/gcbaptista/go-column-index/internal/catalog"
	"github.com/gcbaptista/go-column-index/internal/codec"
	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/model"
)

// Registry resolves source references against a catalog and stores the
// resulting id list on the index column.
type Registry struct {
	catalog *catalog.Catalog
}

func NewRegistry(cat *catalog.Catalog) *Registry {
	return &Registry{catalog: cat}
}

// EncodeIDs renders a source list in its stored form: one little-endian
// uint32 per column id.
func EncodeIDs(ids []model.ColumnID) ([]byte, error) {
	elements := make([]any, len(ids))
	for i, id := range ids {
		elements[i] = uint64(id)
	}
	return codec.Encode(&codec.Value{Type: model.TypeUInt32, Vector: true, Elements: elements})
}

// DecodeIDs is the inverse of EncodeIDs.
func DecodeIDs(bulk []byte) ([]model.ColumnID, error) {
	v, err := codec.DecodeBulk(bulk, model.TypeUInt32, true)
	if err != nil {
		return nil, fmt.Errorf("malformed source list: %w", err)
	}
	ids := make([]model.ColumnID, 0, v.Len())
	for _, e := range v.Elements {
		ids = append(ids, model.ColumnID(e.(uint64)))
	}
	return ids, nil
}

// SourceIDs returns the stored source ids of an index column.
func (r *Registry) SourceIDs(ix model.ColumnID) ([]model.ColumnID, error) {
	bulk, err := r.catalog.SourceInfo(ix)
	if err != nil {
		return nil, err
	}
	return DecodeIDs(bulk)
}

// GetSources returns the source columns of ix in the order they were assigned.
// An id whose column no longer exists is reported as UnresolvedSource.
func (r *Registry) GetSources(ix model.ColumnID) ([]*model.Column, error) {
	ids, err := r.SourceIDs(ix)
	if err != nil {
		return nil, err
	}

	cols := make([]*model.Column, 0, len(ids))
	for _, id := range ids {
		col, err := r.catalog.Resolve(model.ByID(id))
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// SetSources replaces the source list of ix. Every reference is resolved
// and checked before anything is written, so a failure leaves the previous
// list in place. Existing postings are not rebuilt.
func (r *Registry) SetSources(ix model.ColumnID, refs []model.SourceRef) error {
	index, err := r.catalog.Column(ix)
	if err != nil {
		return err
	}
	if !index.IsIndex() {
		return errors.NewNotIndexColumnError(index.FullName())
	}

	reachable := r.catalog.ReachableTables(index.Range)
	ids := make([]model.ColumnID, 0, len(refs))
	seen := make(map[model.ColumnID]bool, len(refs))
	for _, ref := range refs {
		col, err := r.catalog.Resolve(ref)
		if err != nil {
			return err
		}
		if col.IsIndex() || !reachable[col.Table] {
			return errors.NewIncompatibleSourceError(col.FullName(), index.Range)
		}
		// A column occupies one section; SectionOf relies on it.
		if seen[col.ID] {
			return errors.NewValidationError("sources",
				fmt.Sprintf("'%s' is listed more than once", col.FullName()))
		}
		seen[col.ID] = true
		ids = append(ids, col.ID)
	}

	bulk, err := EncodeIDs(ids)
	if err != nil {
		return err
	}
	if err := r.catalog.SetSourceInfo(ix, bulk); err != nil {
		return err
	}

	slog.Info("index_sources_set",
		slog.String("index", index.FullName()),
		slog.Int("sources", len(ids)))
	return nil
}

// SetSource replaces the source list of ix with a single source.
func (r *Registry) SetSource(ix model.ColumnID, ref model.SourceRef) error {
	return r.SetSources(ix, []model.SourceRef{ref})
}

// SectionOf returns the 1-based position of source in the list of ix, or
// 0 when ix does not index source.
func (r *Registry) SectionOf(ix, source model.ColumnID) (model.Section, error) {
	ids, err := r.SourceIDs(ix)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if id == source {
			return model.Section(i + 1), nil
		}
	}
	return 0, nil
}
