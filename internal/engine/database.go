// Package engine ties the catalog, the row value store and the index
// columns of one database together, and keeps them on disk.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"

	"github.com/gcbaptista/go-column-index/internal/catalog"
	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/internal/indexing"
	"github.com/gcbaptista/go-column-index/internal/jobs"
	"github.com/gcbaptista/go-column-index/internal/metrics"
	"github.com/gcbaptista/go-column-index/internal/protocol"
	"github.com/gcbaptista/go-column-index/internal/sources"
	"github.com/gcbaptista/go-column-index/internal/tokenizer"
	"github.com/gcbaptista/go-column-index/model"
	"github.com/gcbaptista/go-column-index/services"
	"github.com/gcbaptista/go-column-index/store"
)

var _ services.ColumnManager = (*Database)(nil)

// Options configures a Database.
type Options struct {
	// DataDir holds the persisted state. Empty keeps everything in memory.
	DataDir string
	// Backend is the posting storage: store.BackendMemory or store.BackendSQLite.
	Backend string
	// TokenizerCacheSize is passed to every index column. Zero disables the cache.
	TokenizerCacheSize int
	// PersistOnClose saves the database when it is closed.
	PersistOnClose bool
	// JobWorkers bounds concurrent background jobs.
	JobWorkers int
	// Metrics receives update and job counters. Nil disables them.
	Metrics *metrics.Metrics
}

// DefaultOptions returns an in-memory database configuration.
func DefaultOptions() Options {
	return Options{
		Backend:            store.BackendMemory,
		TokenizerCacheSize: tokenizer.DefaultCacheSize,
		JobWorkers:         2,
	}
}

// Database manages the tables, columns and index columns of one data
// directory. It implements the services.ColumnManager interface.
type Database struct {
	mu      sync.RWMutex
	opts    Options
	lock    *flock.Flock
	closed  bool
	catalog *catalog.Catalog
	values  *store.ValueStore
	sqlite  *store.SQLiteDB

	registry *sources.Registry
	protocol *protocol.Protocol
	indexes  map[model.ColumnID]*indexing.IndexColumn
	jobs     *jobs.Manager
	metrics  *metrics.Metrics

	// writeMu serializes the trigger path so that reading the old value,
	// storing the new one and updating the indexes is one step per cell.
	writeMu sync.Mutex

	// snapshotMu is held for reading by every mutation and for writing
	// while Persist encodes its snapshots. Taken before mu and writeMu.
	snapshotMu sync.RWMutex
}

// Open loads the database in opts.DataDir, or creates an empty one. The
// data directory is locked against other processes until Close.
func Open(opts Options) (*Database, error) {
	if opts.Backend == "" {
		opts.Backend = store.BackendMemory
	}
	if err := store.ValidateBackend(opts.Backend); err != nil {
		return nil, errors.NewValidationError("backend", err.Error())
	}

	db := &Database{
		opts:    opts,
		catalog: catalog.New(),
		values:  store.NewValueStore(),
		indexes: make(map[model.ColumnID]*indexing.IndexColumn),
		metrics: opts.Metrics,
	}

	if opts.DataDir != "" {
		if err := os.MkdirAll(opts.DataDir, dataDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", opts.DataDir, err)
		}
		db.lock = flock.New(filepath.Join(opts.DataDir, lockFile))
		locked, err := db.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to lock data directory %s: %w", opts.DataDir, err)
		}
		if !locked {
			return nil, fmt.Errorf("data directory %s is in use by another process", opts.DataDir)
		}
		if err := db.loadFromDisk(); err != nil {
			db.unlock()
			return nil, err
		}
	}

	if opts.Backend == store.BackendSQLite {
		sqlitePath := ""
		if opts.DataDir != "" {
			sqlitePath = filepath.Join(opts.DataDir, postingsDBFile)
		}
		sqliteDB, err := store.OpenSQLite(sqlitePath)
		if err != nil {
			db.unlock()
			return nil, err
		}
		db.sqlite = sqliteDB
	}

	db.registry = sources.NewRegistry(db.catalog)
	db.protocol = protocol.New(db.catalog, db.registry, db, db.metrics)

	for _, col := range db.catalog.IndexColumns() {
		if err := db.openIndexLocked(col); err != nil {
			db.closeStores()
			db.unlock()
			return nil, fmt.Errorf("failed to open index column %s: %w", col.FullName(), err)
		}
	}

	db.jobs = jobs.NewManager(opts.JobWorkers, db.metrics)
	db.jobs.Start()

	slog.Info("database_opened",
		slog.String("id", db.catalog.ID()),
		slog.String("data_dir", opts.DataDir),
		slog.String("backend", opts.Backend),
		slog.Int("index_columns", len(db.indexes)))
	return db, nil
}

// openIndexLocked binds an index column definition to its posting storage.
func (db *Database) openIndexLocked(col *model.Column) error {
	var postings store.PostingStore
	switch db.opts.Backend {
	case store.BackendSQLite:
		postings = db.sqlite.Column(col.ID)
	default:
		ms, err := store.LoadMemoryStore(db.postingsPath(col))
		if err != nil {
			return err
		}
		postings = ms
	}

	ic, err := indexing.NewIndexColumn(col, db.registry, postings,
		indexing.WithMetrics(db.metrics),
		indexing.WithCacheSize(db.opts.TokenizerCacheSize))
	if err != nil {
		return err
	}
	db.indexes[col.ID] = ic
	return nil
}

// postingsPath is where the memory backend snapshots an index column.
func (db *Database) postingsPath(col *model.Column) string {
	if db.opts.DataDir == "" {
		return ""
	}
	return filepath.Join(db.opts.DataDir, col.FullName()+postingsFileSuffix)
}

// ID returns the persistent database id.
func (db *Database) ID() string { return db.catalog.ID() }

// Catalog returns the table and column catalog.
func (db *Database) Catalog() *catalog.Catalog { return db.catalog }

// Registry returns the source registry.
func (db *Database) Registry() *sources.Registry { return db.registry }

// Metrics returns the metrics the database records into, possibly nil.
func (db *Database) Metrics() *metrics.Metrics { return db.metrics }

// Updater returns the index update protocol bound to this database.
func (db *Database) Updater() services.UpdateProtocol { return updater{db: db} }

// updater runs protocol mutations under the snapshot read lock.
type updater struct {
	db *Database
}

func (u updater) Sources(ixName string) ([]*model.Column, error) {
	return u.db.protocol.Sources(ixName)
}

// SetSources also takes writeMu so that the trigger path never maps a
// value column to a section of a source list being replaced.
func (u updater) SetSources(ixName string, raw []any) error {
	u.db.snapshotMu.RLock()
	defer u.db.snapshotMu.RUnlock()
	u.db.writeMu.Lock()
	defer u.db.writeMu.Unlock()
	return u.db.protocol.SetSources(ixName, raw)
}

func (u updater) SetSource(ixName string, raw any) error {
	u.db.snapshotMu.RLock()
	defer u.db.snapshotMu.RUnlock()
	u.db.writeMu.Lock()
	defer u.db.writeMu.Unlock()
	return u.db.protocol.SetSource(ixName, raw)
}

func (u updater) Set(ctx context.Context, ixName string, row model.RowID, raw any) error {
	u.db.snapshotMu.RLock()
	defer u.db.snapshotMu.RUnlock()
	return u.db.protocol.Set(ctx, ixName, row, raw)
}

// Jobs returns the background job manager.
func (db *Database) Jobs() services.JobManager { return db.jobs }

// IndexColumn returns the live index column with the given qualified name.
func (db *Database) IndexColumn(name string) (*indexing.IndexColumn, error) {
	col, err := db.catalog.ColumnByName(name)
	if err != nil {
		return nil, err
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	ic, ok := db.indexes[col.ID]
	if !ok {
		return nil, errors.NewNotIndexColumnError(name)
	}
	return ic, nil
}

// Indexer is IndexColumn behind the services.ColumnIndexer interface.
func (db *Database) Indexer(fullName string) (services.ColumnIndexer, error) {
	ic, err := db.IndexColumn(fullName)
	if err != nil {
		return nil, err
	}
	return ic, nil
}

// IndexColumns returns the live index columns sorted by name.
func (db *Database) IndexColumns() []*indexing.IndexColumn {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]*indexing.IndexColumn, 0, len(db.indexes))
	for _, ic := range db.indexes {
		out = append(out, ic)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Close stops background jobs, saves the database when PersistOnClose is
// set and releases the data directory.
func (db *Database) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	db.mu.Unlock()

	db.jobs.Stop()

	var persistErr error
	if db.opts.PersistOnClose {
		persistErr = db.Persist(context.Background())
	}

	db.mu.Lock()
	closeErr := db.closeStores()
	db.mu.Unlock()
	db.unlock()

	slog.Info("database_closed", slog.String("id", db.catalog.ID()))
	if persistErr != nil {
		return persistErr
	}
	return closeErr
}

func (db *Database) closeStores() error {
	var firstErr error
	for _, ic := range db.indexes {
		if err := ic.Store().Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if db.sqlite != nil {
		if err := db.sqlite.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (db *Database) unlock() {
	if db.lock == nil {
		return
	}
	if err := db.lock.Unlock(); err != nil {
		slog.Warn("data_dir_unlock_failed", slog.String("error", err.Error()))
	}
}
