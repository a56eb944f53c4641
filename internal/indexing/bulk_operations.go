package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-column-index/index"
	"github.com/gcbaptista/go-column-index/internal/codec"
	"github.com/gcbaptista/go-column-index/model"
)

// RowUpdate is one Update call of a bulk operation.
type RowUpdate struct {
	Row      model.RowID
	Section  model.Section
	OldValue *codec.Value
	NewValue *codec.Value
}

// BulkUpdateConfig contains configuration for bulk update operations
type BulkUpdateConfig struct {
	BatchSize        int // Number of updates whose postings are computed before applying
	WorkerCount      int // Number of parallel workers computing postings
	ProgressCallback func(processed, total int)
}

// DefaultBulkUpdateConfig returns sensible defaults for bulk updates
func DefaultBulkUpdateConfig() BulkUpdateConfig {
	return BulkUpdateConfig{
		BatchSize:   1000,
		WorkerCount: runtime.NumCPU(),
	}
}

// BulkUpdate applies many updates to the index column. Postings are
// computed in parallel; deltas are applied one update at a time in input
// order, each one atomic on its own. It stops at the first failure and
// reports how many updates were applied.
func (ic *IndexColumn) BulkUpdate(ctx context.Context, updates []RowUpdate, cfg BulkUpdateConfig) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBulkUpdateConfig().BatchSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultBulkUpdateConfig().WorkerCount
	}

	sources, err := ic.sources.GetSources(ic.column.ID)
	if err != nil {
		return 0, err
	}
	for _, u := range updates {
		if err := ic.checkSection(u.Section, len(sources)); err != nil {
			return 0, err
		}
	}

	slog.Info("bulk_update_started",
		slog.String("index", ic.Name()),
		slog.Int("updates", len(updates)),
		slog.Int("workers", cfg.WorkerCount))
	start := time.Now()

	applied := 0
	for begin := 0; begin < len(updates); begin += cfg.BatchSize {
		end := begin + cfg.BatchSize
		if end > len(updates) {
			end = len(updates)
		}
		batch := updates[begin:end]

		deltas, err := ic.computeDeltas(ctx, batch, cfg.WorkerCount)
		if err != nil {
			return applied, err
		}

		for i, delta := range deltas {
			ic.mu.Lock()
			err := ic.store.Apply(ctx, delta)
			ic.mu.Unlock()
			ic.metrics.RecordUpdate(ic.Name(), len(delta.Remove), len(delta.Add), 0, err)
			if err != nil {
				return applied, fmt.Errorf("bulk update failed at row %d: %w", batch[i].Row, asStorageError(err))
			}
			applied++
		}

		if cfg.ProgressCallback != nil {
			cfg.ProgressCallback(applied, len(updates))
		}
	}

	duration := time.Since(start)
	slog.Info("bulk_update_completed",
		slog.String("index", ic.Name()),
		slog.Int("updates", applied),
		slog.Duration("took", duration))
	return applied, nil
}

// computeDeltas runs postingsFor for every update of a batch on a bounded
// number of goroutines. The result keeps the batch order.
func (ic *IndexColumn) computeDeltas(ctx context.Context, batch []RowUpdate, workers int) ([]index.Delta, error) {
	deltas := make([]index.Delta, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range batch {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u := batch[i]
			deltas[i] = index.Delta{
				Remove: ic.postingsFor(u.OldValue, u.Row, u.Section),
				Add:    ic.postingsFor(u.NewValue, u.Row, u.Section),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return deltas, nil
}
