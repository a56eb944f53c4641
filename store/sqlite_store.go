package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/gcbaptista/go-column-index/index"
	internalErrors "github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/model"
)

const postingsSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS postings (
	column_id INTEGER NOT NULL,
	term      TEXT    NOT NULL,
	row_id    INTEGER NOT NULL,
	section   INTEGER NOT NULL,
	freq      INTEGER NOT NULL,
	positions BLOB,
	PRIMARY KEY (column_id, term, row_id, section)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS postings_by_row ON postings(column_id, row_id, section);

INSERT OR IGNORE INTO schema_version (version) VALUES (1);
`

// SQLiteDB is a postings database shared by every index column of a
// Database. Each column gets its own PostingStore view through Column.
type SQLiteDB struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
}

// OpenSQLite opens (or creates) the postings database at path.
// An empty path opens an in-memory database.
func OpenSQLite(path string) (*SQLiteDB, error) {
	dsn := ":memory:"
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, internalErrors.NewStorageError("open postings database", err)
	}

	// One connection: all writes are serialized and an in-memory database
	// is not split across connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	if path != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, internalErrors.NewStorageError("set pragma", err)
		}
	}

	if _, err := db.Exec(postingsSchema); err != nil {
		_ = db.Close()
		return nil, internalErrors.NewStorageError("initialize schema", err)
	}

	slog.Debug("postings_db_opened", slog.String("path", path))
	return &SQLiteDB{db: db, path: path}, nil
}

// Column returns the posting table of one index column.
func (s *SQLiteDB) Column(id model.ColumnID) *SQLiteStore {
	return &SQLiteStore{db: s, column: id}
}

// DropColumn deletes every posting of an index column.
func (s *SQLiteDB) DropColumn(ctx context.Context, id model.ColumnID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return internalErrors.NewStorageError("drop postings", errDatabaseClosed)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM postings WHERE column_id = ?`, int64(id)); err != nil {
		return internalErrors.NewStorageError("drop postings", err)
	}
	return nil
}

// Checkpoint folds the write-ahead log into the main database file.
func (s *SQLiteDB) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.path == "" {
		return nil
	}
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return internalErrors.NewStorageError("checkpoint", err)
	}
	return nil
}

func (s *SQLiteDB) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.path != "" {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}
	return s.db.Close()
}

var errDatabaseClosed = errors.New("postings database is closed")

// SQLiteStore is the PostingStore of one index column inside a SQLiteDB.
type SQLiteStore struct {
	db     *SQLiteDB
	column model.ColumnID
}

// Apply runs the whole delta in one SQL transaction.
func (s *SQLiteStore) Apply(ctx context.Context, d index.Delta) error {
	if d.IsEmpty() {
		return nil
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.closed {
		return internalErrors.NewStorageError("apply delta", errDatabaseClosed)
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return internalErrors.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range d.Remove {
		if err := s.removeTx(ctx, tx, p); err != nil {
			return internalErrors.NewStorageError("remove posting", err)
		}
	}
	for _, p := range d.Add {
		if err := s.addTx(ctx, tx, p); err != nil {
			return internalErrors.NewStorageError("add posting", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return internalErrors.NewStorageError("commit transaction", err)
	}
	return nil
}

func (s *SQLiteStore) loadTx(ctx context.Context, tx *sql.Tx, p index.Posting) (index.Posting, bool, error) {
	var freq int64
	var blob []byte
	err := tx.QueryRowContext(ctx,
		`SELECT freq, positions FROM postings WHERE column_id = ? AND term = ? AND row_id = ? AND section = ?`,
		int64(s.column), p.Term, int64(p.Row), int64(p.Section)).Scan(&freq, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return index.Posting{}, false, nil
	}
	if err != nil {
		return index.Posting{}, false, err
	}
	return index.Posting{
		Term:      p.Term,
		Row:       p.Row,
		Section:   p.Section,
		Freq:      uint32(freq),
		Positions: decodePositions(blob),
	}, true, nil
}

func (s *SQLiteStore) removeTx(ctx context.Context, tx *sql.Tx, p index.Posting) error {
	existing, found, err := s.loadTx(ctx, tx, p)
	if err != nil || !found {
		return err
	}
	if left, keep := index.MergeRemove(existing, p); keep {
		return s.writeTx(ctx, tx, left)
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM postings WHERE column_id = ? AND term = ? AND row_id = ? AND section = ?`,
		int64(s.column), p.Term, int64(p.Row), int64(p.Section))
	return err
}

func (s *SQLiteStore) addTx(ctx context.Context, tx *sql.Tx, p index.Posting) error {
	existing, found, err := s.loadTx(ctx, tx, p)
	if err != nil {
		return err
	}
	if found {
		return s.writeTx(ctx, tx, index.MergeAdd(existing, p))
	}
	return s.writeTx(ctx, tx, p)
}

func (s *SQLiteStore) writeTx(ctx context.Context, tx *sql.Tx, p index.Posting) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO postings(column_id, term, row_id, section, freq, positions) VALUES (?, ?, ?, ?, ?, ?)`,
		int64(s.column), p.Term, int64(p.Row), int64(p.Section), int64(p.Freq), encodePositions(p.Positions))
	return err
}

func (s *SQLiteStore) Postings(ctx context.Context, term string) (index.PostingList, error) {
	rows, err := s.query(ctx,
		`SELECT term, row_id, section, freq, positions FROM postings WHERE column_id = ? AND term = ? ORDER BY row_id, section`,
		int64(s.column), term)
	if err != nil {
		return nil, err
	}
	return scanPostings(rows)
}

func (s *SQLiteStore) RowPostings(ctx context.Context, row model.RowID, section model.Section) ([]index.Posting, error) {
	rows, err := s.query(ctx,
		`SELECT term, row_id, section, freq, positions FROM postings WHERE column_id = ? AND row_id = ? AND section = ? ORDER BY term`,
		int64(s.column), int64(row), int64(section))
	if err != nil {
		return nil, err
	}
	return scanPostings(rows)
}

func (s *SQLiteStore) Terms(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx,
		`SELECT DISTINCT term FROM postings WHERE column_id = ? ORDER BY term`, int64(s.column))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := []string{}
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, internalErrors.NewStorageError("scan term", err)
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErrors.NewStorageError("read terms", err)
	}
	return terms, nil
}

// Close is a no-op: the shared SQLiteDB owns the connection.
func (s *SQLiteStore) Close() error {
	return nil
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.closed {
		return nil, internalErrors.NewStorageError("query postings", errDatabaseClosed)
	}
	rows, err := s.db.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, internalErrors.NewStorageError("query postings", err)
	}
	return rows, nil
}

func scanPostings(rows *sql.Rows) (index.PostingList, error) {
	defer rows.Close()

	var out index.PostingList
	for rows.Next() {
		var (
			p                  index.Posting
			row, section, freq int64
			blob               []byte
		)
		if err := rows.Scan(&p.Term, &row, &section, &freq, &blob); err != nil {
			return nil, internalErrors.NewStorageError("scan posting", err)
		}
		p.Row = model.RowID(row)
		p.Section = model.Section(section)
		p.Freq = uint32(freq)
		p.Positions = decodePositions(blob)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErrors.NewStorageError("read postings", err)
	}
	return out, nil
}

func encodePositions(positions []uint32) []byte {
	if len(positions) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(positions))
	for i, p := range positions {
		binary.LittleEndian.PutUint32(buf[4*i:], p)
	}
	return buf
}

func decodePositions(blob []byte) []uint32 {
	if len(blob) < 4 {
		return nil
	}
	out := make([]uint32, len(blob)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(blob[4*i:])
	}
	return out
}
