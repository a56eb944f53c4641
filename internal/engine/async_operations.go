package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gcbaptista/go-column-index/internal/indexing"
	"github.com/gcbaptista/go-column-index/model"
	"github.com/gcbaptista/go-column-index/services"
)

// BulkSetAsync applies many Set calls to one index column in the
// background and returns the job id. Every argument is decoded before the
// job is created, so malformed input fails the call instead of the job.
func (db *Database) BulkSetAsync(ixName string, rows []services.RawRowUpdate) (string, error) {
	var ic *indexing.IndexColumn
	updates := make([]indexing.RowUpdate, 0, len(rows))
	for i, r := range rows {
		target, update, err := db.protocol.Prepare(ixName, r.Row, r.Args)
		if err != nil {
			return "", fmt.Errorf("update %d (row %d): %w", i, r.Row, err)
		}
		ic = target
		updates = append(updates, update)
	}
	if ic == nil {
		var err error
		if ic, err = db.IndexColumn(ixName); err != nil {
			return "", err
		}
	}

	jobID := db.jobs.CreateJob(model.JobTypeBulkUpdate, ixName, map[string]string{
		"operation": "bulk_update",
		"updates":   strconv.Itoa(len(updates)),
	})

	err := db.jobs.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return db.executeBulkUpdateJob(ctx, ic, updates, job.ID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start bulk update job: %w", err)
	}
	return jobID, nil
}

func (db *Database) executeBulkUpdateJob(ctx context.Context, ic *indexing.IndexColumn, updates []indexing.RowUpdate, jobID string) error {
	db.jobs.UpdateJobProgress(jobID, 0, len(updates), "Starting bulk update")

	cfg := indexing.DefaultBulkUpdateConfig()
	cfg.ProgressCallback = func(processed, total int) {
		db.jobs.UpdateJobProgress(jobID, processed, total, "Applying updates")
	}

	db.snapshotMu.RLock()
	applied, err := ic.BulkUpdate(ctx, updates, cfg)
	db.snapshotMu.RUnlock()
	if err != nil {
		db.jobs.UpdateJobProgress(jobID, applied, len(updates), "Bulk update stopped")
		return fmt.Errorf("bulk update of '%s' stopped after %d updates: %w", ic.Name(), applied, err)
	}

	db.jobs.UpdateJobProgress(jobID, applied, len(updates), "Bulk update completed")
	return nil
}

// PersistAsync saves the database in the background and returns the job id.
func (db *Database) PersistAsync() (string, error) {
	jobID := db.jobs.CreateJob(model.JobTypePersist, "", map[string]string{
		"operation": "persist",
	})
	err := db.jobs.ExecuteJob(jobID, func(ctx context.Context, _ *model.Job) error {
		return db.Persist(ctx)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start persist job: %w", err)
	}
	return jobID, nil
}
