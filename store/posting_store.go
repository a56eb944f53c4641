package store

import (
	"context"
	"fmt"

	"github.com/gcbaptista/go-column-index/index"
	"github.com/gcbaptista/go-column-index/model"
)

// Backend names accepted by the server configuration.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// PostingStore holds the posting table of one index column.
//
// Apply must make the whole delta visible at once: a reader never observes
// the removals of a delta without its additions, and a failed Apply leaves
// the table as it was. Failures are reported as StorageError.
type PostingStore interface {
	Apply(ctx context.Context, d index.Delta) error
	Postings(ctx context.Context, term string) (index.PostingList, error)
	RowPostings(ctx context.Context, row model.RowID, section model.Section) ([]index.Posting, error)
	Terms(ctx context.Context) ([]string, error)
	Close() error
}

// ValidateBackend checks a backend name from configuration.
func ValidateBackend(name string) error {
	switch name {
	case BackendMemory, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("unknown posting backend %q (expected %q or %q)", name, BackendMemory, BackendSQLite)
	}
}
