// Package testing provides utilities and helpers for testing code built
// on a column index database.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-column-index/config"
	"github.com/gcbaptista/go-column-index/internal/engine"
	"github.com/gcbaptista/go-column-index/internal/metrics"
	"github.com/gcbaptista/go-column-index/model"
	"github.com/gcbaptista/go-column-index/services"
)

// BookmarksIndex is the index column CreateBookmarksSchema defines.
const BookmarksIndex = "Lexicon.bookmarks_index"

// CreateTestDatabase opens an in-memory database with its own metrics and
// closes it when the test ends.
func CreateTestDatabase(t *testing.T) *engine.Database {
	t.Helper()

	opts := engine.DefaultOptions()
	opts.Metrics = metrics.New()

	db, err := engine.Open(opts)
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// CreateBookmarksSchema defines Bookmarks(title ShortText, n_viewed Int32,
// tags ShortText vector) and Lexicon.bookmarks_index over Bookmarks.title.
func CreateBookmarksSchema(t *testing.T, db services.SchemaManager) {
	t.Helper()

	_, err := db.CreateTable("Bookmarks")
	require.NoError(t, err)
	_, err = db.CreateTable("Lexicon")
	require.NoError(t, err)

	_, err = db.CreateColumn("Bookmarks", "title", model.TypeShortText, "", false)
	require.NoError(t, err)
	_, err = db.CreateColumn("Bookmarks", "n_viewed", model.TypeInt32, "", false)
	require.NoError(t, err)
	_, err = db.CreateColumn("Bookmarks", "tags", model.TypeShortText, "", true)
	require.NoError(t, err)

	_, err = db.CreateIndexColumn("Lexicon", config.ColumnSettings{
		Name:         "bookmarks_index",
		TargetTable:  "Bookmarks",
		WithPosition: true,
		Sources:      []string{"Bookmarks.title"},
	})
	require.NoError(t, err, "Failed to create test index column")
}

// AddTestBookmarks adds three bookmarks and returns their row ids.
func AddTestBookmarks(t *testing.T, db services.RowWriter) []model.RowID {
	t.Helper()

	titles := []string{"Go Programming", "Rust Programming", "Go Concurrency Patterns"}
	rows := make([]model.RowID, 0, len(titles))
	for i, title := range titles {
		row, err := db.AddRow(context.Background(), "Bookmarks", map[string]any{
			"title":    title,
			"n_viewed": i + 1,
		})
		require.NoError(t, err, "Failed to add test bookmark")
		rows = append(rows, row)
	}
	return rows
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJob polls a job until it reaches a terminal status or times out.
func WaitForJob(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()

	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not finish within %v", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			if job.IsFinished() {
				return job
			}
			if opts.LogProgress && job.Progress != nil {
				t.Logf("Job %s progress: %d/%d - %s",
					jobID,
					job.Progress.Current,
					job.Progress.Total,
					job.Progress.Message)
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedColumn string) {
	t.Helper()

	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedColumn, job.Column, "Job column should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}
