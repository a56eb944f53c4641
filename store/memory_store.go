package store

import (
	"context"
	"os"

	"github.com/gcbaptista/go-column-index/index"
	internalErrors "github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/internal/persistence"
	"github.com/gcbaptista/go-column-index/model"
)

// MemoryStore keeps postings in an index.InvertedIndex and snapshots them
// to a gob file on Save.
type MemoryStore struct {
	index *index.InvertedIndex
	path  string
}

// NewMemoryStore returns an empty store. path is where Save writes the
// snapshot; an empty path disables persistence.
func NewMemoryStore(path string) *MemoryStore {
	return &MemoryStore{index: index.NewInvertedIndex(), path: path}
}

// LoadMemoryStore opens the snapshot at path, or starts empty when there is none.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	s := NewMemoryStore(path)
	if path == "" {
		return s, nil
	}
	if err := persistence.LoadGob(path, s.index); err != nil {
		if err == os.ErrNotExist {
			return s, nil
		}
		return nil, internalErrors.NewStorageError("load postings", err)
	}
	return s, nil
}

func (s *MemoryStore) Apply(_ context.Context, d index.Delta) error {
	s.index.Apply(d)
	return nil
}

func (s *MemoryStore) Postings(_ context.Context, term string) (index.PostingList, error) {
	return s.index.Postings(term), nil
}

func (s *MemoryStore) RowPostings(_ context.Context, row model.RowID, section model.Section) ([]index.Posting, error) {
	return s.index.RowPostings(row, section), nil
}

func (s *MemoryStore) Terms(_ context.Context) ([]string, error) {
	return s.index.Terms(), nil
}

// Save writes the snapshot file.
func (s *MemoryStore) Save() error {
	write, err := s.Snapshot()
	if err != nil {
		return err
	}
	return write()
}

// Snapshot encodes the postings as they are now and returns a function
// that writes them to the snapshot file.
func (s *MemoryStore) Snapshot() (func() error, error) {
	if s.path == "" {
		return func() error { return nil }, nil
	}
	data, err := persistence.EncodeGob(s.index)
	if err != nil {
		return nil, internalErrors.NewStorageError("encode postings", err)
	}
	return func() error {
		if err := persistence.WriteFileAtomic(s.path, data); err != nil {
			return internalErrors.NewStorageError("save postings", err)
		}
		return nil
	}, nil
}

// Remove deletes the snapshot file, used when the index column is dropped.
func (s *MemoryStore) Remove() error {
	s.index.Reset()
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return internalErrors.NewStorageError("remove postings", err)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
