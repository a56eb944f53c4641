package indexing

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/gcbaptista/go-column-index/internal/codec"
	"github.com/gcbaptista/go-column-index/model"
	"github.com/gcbaptista/go-column-index/store"
)

// generateTestUpdates creates a slice of row updates for benchmarking
func generateTestUpdates(count int) []RowUpdate {
	updates := make([]RowUpdate, count)
	for i := 0; i < count; i++ {
		updates[i] = RowUpdate{
			Row:      model.RowID(i + 1),
			Section:  1,
			NewValue: codec.NewText(fmt.Sprintf("This is a test bookmark number %d with some content for indexing", i)),
		}
	}
	return updates
}

// BenchmarkUpdate benchmarks one Update call per row
func BenchmarkUpdate(b *testing.B) {
	sizes := []int{100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("rows_%d", size), func(b *testing.B) {
			updates := generateTestUpdates(size)
			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ic := newTestIndex(b, 1, nil)
				for _, u := range updates {
					if err := ic.Update(ctx, u.Row, u.Section, u.OldValue, u.NewValue); err != nil {
						b.Fatalf("Update failed: %v", err)
					}
				}
			}
		})
	}
}

// BenchmarkBulkUpdate benchmarks BulkUpdate with parallel posting computation
func BenchmarkBulkUpdate(b *testing.B) {
	sizes := []int{100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("rows_%d", size), func(b *testing.B) {
			updates := generateTestUpdates(size)
			cfg := BulkUpdateConfig{BatchSize: 250, WorkerCount: runtime.NumCPU()}
			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ic := newTestIndex(b, 1, nil)
				if _, err := ic.BulkUpdate(ctx, updates, cfg); err != nil {
					b.Fatalf("BulkUpdate failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkUpdateSQLite benchmarks Update against the SQLite posting backend
func BenchmarkUpdateSQLite(b *testing.B) {
	updates := generateTestUpdates(100)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		db, err := store.OpenSQLite("")
		if err != nil {
			b.Fatalf("OpenSQLite failed: %v", err)
		}
		ic := newTestIndex(b, 1, db.Column(100))
		for _, u := range updates {
			if err := ic.Update(ctx, u.Row, u.Section, u.OldValue, u.NewValue); err != nil {
				b.Fatalf("Update failed: %v", err)
			}
		}
		_ = db.Close()
	}
}
