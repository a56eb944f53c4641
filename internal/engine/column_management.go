package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gcbaptista/go-column-index/config"
	"github.com/gcbaptista/go-column-index/internal/catalog"
	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/model"
	"github.com/gcbaptista/go-column-index/store"
)

// CreateTable registers a new table.
func (db *Database) CreateTable(name string) (model.Table, error) {
	db.snapshotMu.RLock()
	defer db.snapshotMu.RUnlock()

	table, err := db.catalog.CreateTable(name)
	if err != nil {
		return model.Table{}, err
	}
	slog.Info("table_created", slog.String("table", name))
	return table, nil
}

// Tables lists the tables sorted by name.
func (db *Database) Tables() []model.Table {
	return db.catalog.Tables()
}

// CreateColumn adds a value column. rangeTable is required for
// TypeReference and must be empty otherwise.
func (db *Database) CreateColumn(table, name string, dt model.DataType, rangeTable string, vector bool) (*model.Column, error) {
	db.snapshotMu.RLock()
	defer db.snapshotMu.RUnlock()

	col, err := db.catalog.CreateColumn(table, name, dt, rangeTable, vector)
	if err != nil {
		return nil, err
	}
	slog.Info("column_created", slog.String("column", col.String()))
	return col, nil
}

// CreateIndexColumn adds an index column to table from settings and opens
// its posting storage. Sources named in settings are assigned right away;
// if that fails the column is not created.
func (db *Database) CreateIndexColumn(table string, settings config.ColumnSettings) (*model.Column, error) {
	if conflicts := settings.ValidateFieldNames(); len(conflicts) > 0 {
		return nil, errors.NewValidationError("settings", strings.Join(conflicts, "; "))
	}
	settings.ApplyDefaults()

	db.snapshotMu.RLock()
	defer db.snapshotMu.RUnlock()
	db.mu.Lock()
	defer db.mu.Unlock()

	col, err := db.catalog.CreateIndexColumn(table, settings.Name, settings.TargetTable, catalog.IndexOptions{
		Tokenizer:    settings.Tokenizer,
		WithPosition: settings.WithPosition,
		Normalize:    settings.Normalize,
	})
	if err != nil {
		return nil, err
	}

	if len(settings.Sources) > 0 {
		refs := make([]model.SourceRef, 0, len(settings.Sources))
		for _, name := range settings.Sources {
			refs = append(refs, model.ByName(name))
		}
		if err := db.registry.SetSources(col.ID, refs); err != nil {
			db.rollbackColumn(col)
			return nil, err
		}
	}

	if err := db.openIndexLocked(col); err != nil {
		db.rollbackColumn(col)
		return nil, fmt.Errorf("failed to open index column %s: %w", col.FullName(), err)
	}

	slog.Info("index_column_created",
		slog.String("column", col.String()),
		slog.Int("sources", len(settings.Sources)))
	return db.catalog.Column(col.ID)
}

func (db *Database) rollbackColumn(col *model.Column) {
	if _, err := db.catalog.RemoveColumn(col.FullName()); err != nil {
		slog.Warn("column_rollback_failed",
			slog.String("column", col.FullName()),
			slog.String("error", err.Error()))
	}
}

// RemoveColumn drops a column and its data. A value column that is still
// the source of an index column cannot be removed.
func (db *Database) RemoveColumn(ctx context.Context, fullName string) error {
	db.snapshotMu.RLock()
	defer db.snapshotMu.RUnlock()

	col, err := db.catalog.ColumnByName(fullName)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if !col.IsIndex() {
		for _, ix := range db.catalog.IndexColumns() {
			section, err := db.registry.SectionOf(ix.ID, col.ID)
			if err != nil {
				return err
			}
			if section != 0 {
				return errors.NewValidationError("column",
					fmt.Sprintf("'%s' is a source of index column '%s'", fullName, ix.FullName()))
			}
		}
	}

	if col.IsIndex() {
		if ic, ok := db.indexes[col.ID]; ok {
			if err := db.dropPostings(ctx, col.ID, ic.Store()); err != nil {
				return err
			}
			delete(db.indexes, col.ID)
		}
	} else {
		db.values.DropColumn(col.ID)
	}

	if _, err := db.catalog.RemoveColumn(fullName); err != nil {
		return err
	}
	slog.Info("column_removed", slog.String("column", fullName))
	return nil
}

func (db *Database) dropPostings(ctx context.Context, id model.ColumnID, ps store.PostingStore) error {
	if ms, ok := ps.(*store.MemoryStore); ok {
		return ms.Remove()
	}
	if db.sqlite != nil {
		return db.sqlite.DropColumn(ctx, id)
	}
	return nil
}

// Column looks a column up by its qualified name.
func (db *Database) Column(fullName string) (*model.Column, error) {
	return db.catalog.ColumnByName(fullName)
}

// Columns lists the columns of a table in creation order.
func (db *Database) Columns(table string) ([]*model.Column, error) {
	return db.catalog.Columns(table)
}
