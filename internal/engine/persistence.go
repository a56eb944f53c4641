package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-column-index/internal/persistence"
)

const (
	dataDirPerm        = 0755
	lockFile           = ".lock"
	catalogFile        = "catalog.gob"
	valuesFile         = "values.gob"
	postingsDBFile     = "postings.db"
	postingsFileSuffix = ".postings.gob"
)

// snapshotter is a posting store that is saved by writing a snapshot file.
type snapshotter interface {
	Snapshot() (func() error, error)
}

// loadFromDisk reads the catalog and the row values. Missing files mean a
// fresh database; a file that exists but cannot be decoded is an error.
func (db *Database) loadFromDisk() error {
	slog.Info("loading_database", slog.String("data_dir", db.opts.DataDir))

	catalogPath := filepath.Join(db.opts.DataDir, catalogFile)
	if err := persistence.LoadGob(catalogPath, db.catalog); err != nil {
		if err != os.ErrNotExist {
			return fmt.Errorf("failed to load catalog from %s: %w", catalogPath, err)
		}
		slog.Info("catalog_not_found", slog.String("path", catalogPath))
	}

	valuesPath := filepath.Join(db.opts.DataDir, valuesFile)
	if err := persistence.LoadGob(valuesPath, db.values); err != nil {
		if err != os.ErrNotExist {
			return fmt.Errorf("failed to load row values from %s: %w", valuesPath, err)
		}
		slog.Info("values_not_found", slog.String("path", valuesPath))
	}
	return nil
}

// Persist saves the catalog, the row values and every index column.
// Mutations are blocked while the snapshots are encoded, so the files
// describe one state; the files are then written concurrently, each one
// replaced atomically. It is a no-op for an in-memory database.
func (db *Database) Persist(ctx context.Context) error {
	if db.opts.DataDir == "" {
		return nil
	}
	start := time.Now()

	writes, err := db.snapshot()
	if err != nil {
		slog.Error("persist_failed", slog.String("error", err.Error()))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, write := range writes {
		write := write
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return write()
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("persist_failed", slog.String("error", err.Error()))
		return err
	}

	slog.Info("database_persisted",
		slog.String("data_dir", db.opts.DataDir),
		slog.Int("files", len(writes)),
		slog.Duration("took", time.Since(start)))
	return nil
}

// snapshot encodes every persisted structure under snapshotMu and returns
// the file writes to run once it is released.
func (db *Database) snapshot() ([]func() error, error) {
	db.snapshotMu.Lock()
	defer db.snapshotMu.Unlock()

	catalogData, err := persistence.EncodeGob(db.catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	valuesData, err := persistence.EncodeGob(db.values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row values: %w", err)
	}

	writes := []func() error{
		func() error {
			if err := persistence.WriteFileAtomic(filepath.Join(db.opts.DataDir, catalogFile), catalogData); err != nil {
				return fmt.Errorf("failed to save catalog: %w", err)
			}
			return nil
		},
		func() error {
			if err := persistence.WriteFileAtomic(filepath.Join(db.opts.DataDir, valuesFile), valuesData); err != nil {
				return fmt.Errorf("failed to save row values: %w", err)
			}
			return nil
		},
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, ic := range db.indexes {
		s, ok := ic.Store().(snapshotter)
		if !ok {
			continue
		}
		write, err := s.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot %s: %w", ic.Name(), err)
		}
		writes = append(writes, write)
	}
	if db.sqlite != nil {
		if err := db.sqlite.Checkpoint(); err != nil {
			return nil, err
		}
	}
	return writes, nil
}
