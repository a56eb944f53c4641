package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-column-index/config"
	"github.com/gcbaptista/go-column-index/model"
	"github.com/gcbaptista/go-column-index/services"
)

// rowTerms returns the terms of every posting row holds in section 1.
func rowTerms(t *testing.T, db *Database, ixName string, row model.RowID) []string {
	t.Helper()
	ic, err := db.IndexColumn(ixName)
	require.NoError(t, err)
	list, err := ic.RowPostings(context.Background(), row, 1)
	require.NoError(t, err)
	terms := make([]string, 0, len(list))
	for _, p := range list {
		terms = append(terms, p.Term)
	}
	return terms
}

func TestSetValue_TimeIndexClearsSubMicrosecondValues(t *testing.T) {
	ctx := context.Background()
	db := newBookmarksDB(t, DefaultOptions())
	_, err := db.CreateColumn("Bookmarks", "added", model.TypeTime, "", false)
	require.NoError(t, err)
	_, err = db.CreateIndexColumn("Lexicon", config.ColumnSettings{
		Name:        "added_index",
		TargetTable: "Bookmarks",
		Sources:     []string{"Bookmarks.added"},
	})
	require.NoError(t, err)

	require.NoError(t, db.SetValue(ctx, "Bookmarks", 1, "added", "2024-01-02T03:04:05.123456789Z"))
	assert.Equal(t, []string{"2024-01-02T03:04:05.123456Z"}, rowTerms(t, db, "Lexicon.added_index", 1))

	require.NoError(t, db.SetValue(ctx, "Bookmarks", 1, "added", time.Date(2024, 1, 2, 3, 4, 6, 999, time.UTC)))
	assert.Equal(t, []string{"2024-01-02T03:04:06Z"}, rowTerms(t, db, "Lexicon.added_index", 1))

	require.NoError(t, db.SetValue(ctx, "Bookmarks", 1, "added", nil))
	assert.Empty(t, rowTerms(t, db, "Lexicon.added_index", 1))
}

func TestPersist_ConcurrentWritesStayConsistent(t *testing.T) {
	ctx := context.Background()
	opts := DefaultOptions()
	opts.DataDir = t.TempDir()
	db := newBookmarksDB(t, opts)

	const rows = 5
	var wg sync.WaitGroup
	for r := 1; r <= rows; r++ {
		wg.Add(1)
		go func(row model.RowID) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				title := fmt.Sprintf("row%d version%d", row, i)
				assert.NoError(t, db.SetValue(ctx, "Bookmarks", row, "title", title))
			}
		}(model.RowID(r))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Persist(ctx))
	}
	wg.Wait()
	require.NoError(t, db.Persist(ctx))

	// More writes after the last snapshot must not reach the reopened state.
	require.NoError(t, db.SetValue(ctx, "Bookmarks", 1, "title", "never persisted"))
	require.NoError(t, db.Close())

	reopened, err := Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	for r := model.RowID(1); r <= rows; r++ {
		value, err := reopened.GetValue("Bookmarks", r, "title")
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.ElementsMatch(t, strings.Fields(value.(string)), rowTerms(t, reopened, bookmarksIndex, r), "row %d", r)

		require.NoError(t, reopened.SetValue(ctx, "Bookmarks", r, "title", nil))
		assert.Empty(t, rowTerms(t, reopened, bookmarksIndex, r), "row %d", r)
	}
}

func TestSetValue_ReadsSectionsUnderWriteLock(t *testing.T) {
	ctx := context.Background()
	db := newBookmarksDB(t, DefaultOptions())

	db.writeMu.Lock()
	done := make(chan error, 1)
	go func() {
		done <- db.SetValue(ctx, "Bookmarks", 1, "title", "hello")
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, db.protocol.SetSources(bookmarksIndex, []any{"Bookmarks.n_viewed", "Bookmarks.title"}))
	db.writeMu.Unlock()
	require.NoError(t, <-done)

	ic, err := db.IndexColumn(bookmarksIndex)
	require.NoError(t, err)
	list, err := ic.Postings(ctx, "hello")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.Section(2), list[0].Section)
}

// lockedBuffer is a bytes.Buffer safe for the job goroutines that log into it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBulkSetAsync_LogsCompletionOnce(t *testing.T) {
	var logs lockedBuffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	db := newBookmarksDB(t, DefaultOptions())
	jobID, err := db.BulkSetAsync(bookmarksIndex, []services.RawRowUpdate{
		{Row: 1, Args: "hello world"},
		{Row: 2, Args: "hello go"},
	})
	require.NoError(t, err)
	waitForJob(t, db, jobID)

	assert.Equal(t, 1, strings.Count(logs.String(), "bulk_update_completed"))
}
