package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gcbaptista/go-column-index/internal/codec"
	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/internal/indexing"
	"github.com/gcbaptista/go-column-index/model"
)

// indexTarget is an index column fed by a value column, with the section
// the value column occupies in its source list.
type indexTarget struct {
	index   *indexing.IndexColumn
	section model.Section
}

// SetValue stores raw in (table, row, column) and brings every index
// column that lists the column as a source up to date. If an index update
// fails, the indexes already updated and the stored value are restored.
func (db *Database) SetValue(ctx context.Context, table string, row model.RowID, column string, raw any) error {
	db.snapshotMu.RLock()
	defer db.snapshotMu.RUnlock()
	return db.setValue(ctx, table, row, column, raw)
}

func (db *Database) setValue(ctx context.Context, table string, row model.RowID, column string, raw any) error {
	if row == 0 {
		return errors.NewValidationError("row", "row ids start at 1")
	}
	col, err := db.catalog.ColumnByName(table + "." + column)
	if err != nil {
		return err
	}
	if col.IsIndex() {
		return errors.NewValidationError("column",
			fmt.Sprintf("'%s' is an index column; its postings follow its sources", col.FullName()))
	}

	newValue, err := codec.Decode(raw, col.Type, col.Vector)
	if err != nil {
		return fmt.Errorf("%s: %w", col.FullName(), err)
	}
	newBulk, err := codec.Encode(newValue)
	if err != nil {
		return fmt.Errorf("%s: %w", col.FullName(), err)
	}
	if newValue.IsEmpty() {
		newBulk = nil
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	targets, err := db.indexTargets(col)
	if err != nil {
		return err
	}

	if err := db.catalog.TouchRow(table, row); err != nil {
		return err
	}

	oldBulk := db.values.Swap(col.ID, row, newBulk)
	var oldValue *codec.Value
	if oldBulk != nil {
		if oldValue, err = codec.DecodeBulk(oldBulk, col.Type, col.Vector); err != nil {
			db.values.Swap(col.ID, row, oldBulk)
			return err
		}
	}

	for i, target := range targets {
		err := target.index.Update(ctx, row, target.section, oldValue, newValue)
		if err == nil {
			continue
		}
		for _, done := range targets[:i] {
			if undoErr := done.index.Update(ctx, row, done.section, newValue, oldValue); undoErr != nil {
				slog.Error("index_update_rollback_failed",
					slog.String("index", done.index.Name()),
					slog.Uint64("row", uint64(row)),
					slog.String("error", undoErr.Error()))
			}
		}
		db.values.Swap(col.ID, row, oldBulk)
		return err
	}

	slog.Debug("value_set",
		slog.String("column", col.FullName()),
		slog.Uint64("row", uint64(row)),
		slog.Int("indexes", len(targets)))
	return nil
}

// indexTargets finds the index columns that col feeds directly: those
// whose target table is col's own table.
func (db *Database) indexTargets(col *model.Column) ([]indexTarget, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var targets []indexTarget
	for _, ic := range db.indexes {
		def := ic.Column()
		if def.Range != col.Table {
			continue
		}
		section, err := db.registry.SectionOf(ic.ID(), col.ID)
		if err != nil {
			return nil, err
		}
		if section == 0 {
			continue
		}
		targets = append(targets, indexTarget{index: ic, section: section})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].index.Name() < targets[j].index.Name() })
	return targets, nil
}

// GetValue returns the decoded value of (table, row, column), or nil when
// the cell is empty.
func (db *Database) GetValue(table string, row model.RowID, column string) (any, error) {
	col, err := db.catalog.ColumnByName(table + "." + column)
	if err != nil {
		return nil, err
	}
	if col.IsIndex() {
		return nil, errors.NewValidationError("column",
			fmt.Sprintf("'%s' is an index column and holds no row values", col.FullName()))
	}

	bulk, ok := db.values.Get(col.ID, row)
	if !ok {
		return nil, nil
	}
	v, err := codec.DecodeBulk(bulk, col.Type, col.Vector)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// AddRow allocates a new row in table and sets the given column values
// in column name order. It returns the new row id.
func (db *Database) AddRow(ctx context.Context, table string, values map[string]any) (model.RowID, error) {
	db.snapshotMu.RLock()
	defer db.snapshotMu.RUnlock()

	row, err := db.catalog.AllocateRow(table)
	if err != nil {
		return 0, err
	}
	if err := db.setRow(ctx, table, row, values); err != nil {
		return row, err
	}
	return row, nil
}

// SetRow sets several columns of one row, stopping at the first failure.
func (db *Database) SetRow(ctx context.Context, table string, row model.RowID, values map[string]any) error {
	db.snapshotMu.RLock()
	defer db.snapshotMu.RUnlock()
	return db.setRow(ctx, table, row, values)
}

func (db *Database) setRow(ctx context.Context, table string, row model.RowID, values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := db.setValue(ctx, table, row, name, values[name]); err != nil {
			return err
		}
	}
	return nil
}
