package indexing

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gcbaptista/go-column-index/index"
	"github.com/gcbaptista/go-column-index/internal/codec"
	"github.com/gcbaptista/go-column-index/internal/errors"
	"github.com/gcbaptista/go-column-index/internal/metrics"
	"github.com/gcbaptista/go-column-index/internal/tokenizer"
	"github.com/gcbaptista/go-column-index/internal/typoutil"
	"github.com/gcbaptista/go-column-index/model"
	"github.com/gcbaptista/go-column-index/store"
)

// SourceLister returns the current source columns of an index column.
type SourceLister interface {
	GetSources(ix model.ColumnID) ([]*model.Column, error)
}

// IndexColumn maintains the posting table of one index column.
// It fulfills the services.ColumnIndexer interface.
type IndexColumn struct {
	mu        sync.Mutex
	column    *model.Column
	sources   SourceLister
	store     store.PostingStore
	tokenizer tokenizer.Tokenizer
	cacheSize int
	metrics   *metrics.Metrics
}

// Option configures an IndexColumn.
type Option func(*IndexColumn)

// WithMetrics records every update in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(ic *IndexColumn) { ic.metrics = m }
}

// WithTokenizer replaces the tokenizer picked from the column settings.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(ic *IndexColumn) { ic.tokenizer = t }
}

// WithCacheSize sets how many distinct texts the column tokenizer
// remembers. Zero disables the cache.
func WithCacheSize(size int) Option {
	return func(ic *IndexColumn) { ic.cacheSize = size }
}

// NewIndexColumn binds an index column definition to its posting storage.
func NewIndexColumn(column *model.Column, sources SourceLister, postings store.PostingStore, opts ...Option) (*IndexColumn, error) {
	if column == nil {
		return nil, fmt.Errorf("column cannot be nil")
	}
	if !column.IsIndex() {
		return nil, errors.NewNotIndexColumnError(column.FullName())
	}
	if sources == nil {
		return nil, fmt.Errorf("source lister cannot be nil")
	}
	if postings == nil {
		return nil, fmt.Errorf("posting store cannot be nil")
	}

	def := *column
	def.Sources = nil
	ic := &IndexColumn{column: &def, sources: sources, store: postings, cacheSize: tokenizer.DefaultCacheSize}
	for _, opt := range opts {
		opt(ic)
	}

	if ic.tokenizer == nil {
		base, err := tokenizer.New(column.Tokenizer, column.Normalize)
		if err != nil {
			return nil, errors.NewValidationError("tokenizer", err.Error())
		}
		ic.tokenizer = base
		if ic.cacheSize > 0 {
			cached, err := tokenizer.NewCached(base, ic.cacheSize)
			if err != nil {
				return nil, err
			}
			ic.tokenizer = cached
		}
	}
	return ic, nil
}

// ID returns the catalog id of the index column.
func (ic *IndexColumn) ID() model.ColumnID { return ic.column.ID }

// Name returns the qualified name of the index column.
func (ic *IndexColumn) Name() string { return ic.column.FullName() }

// Column returns a copy of the index column definition.
func (ic *IndexColumn) Column() *model.Column {
	def := *ic.column
	return &def
}

// Store returns the posting storage of the column.
func (ic *IndexColumn) Store() store.PostingStore { return ic.store }

// Update replaces the postings that the old value of (row, section)
// contributed with the postings of the new value. The removal and the
// addition are applied as one unit: readers see the state before or after,
// never in between. Absent or empty values contribute no postings.
func (ic *IndexColumn) Update(ctx context.Context, row model.RowID, section model.Section, oldValue, newValue *codec.Value) error {
	start := time.Now()

	sources, err := ic.sources.GetSources(ic.column.ID)
	if err != nil {
		return err
	}
	if err := ic.checkSection(section, len(sources)); err != nil {
		return err
	}

	delta := index.Delta{
		Remove: ic.postingsFor(oldValue, row, section),
		Add:    ic.postingsFor(newValue, row, section),
	}

	ic.mu.Lock()
	err = ic.store.Apply(ctx, delta)
	ic.mu.Unlock()

	if err != nil {
		err = asStorageError(err)
	}
	ic.metrics.RecordUpdate(ic.Name(), len(delta.Remove), len(delta.Add), time.Since(start), err)
	if err != nil {
		slog.Error("index_update_failed",
			slog.String("index", ic.Name()),
			slog.Uint64("row", uint64(row)),
			slog.Uint64("section", uint64(section)),
			slog.String("error", err.Error()))
		return err
	}

	slog.Debug("index_updated",
		slog.String("index", ic.Name()),
		slog.Uint64("row", uint64(row)),
		slog.Uint64("section", uint64(section)),
		slog.Int("removed", len(delta.Remove)),
		slog.Int("added", len(delta.Add)))
	return nil
}

// asStorageError makes sure a store failure surfaces as StorageFailure.
func asStorageError(err error) error {
	if stderrors.Is(err, errors.ErrStorageFailure) {
		return err
	}
	return errors.NewStorageError("apply delta", err)
}

func (ic *IndexColumn) checkSection(section model.Section, numSources int) error {
	switch {
	case numSources == 0:
		return errors.NewNoSourcesError(ic.Name())
	case numSources == 1:
		return nil
	case section == 0 || int(section) > numSources:
		return errors.NewInvalidSectionError(ic.Name(), uint32(section), numSources)
	}
	return nil
}

// postingsFor computes the postings v contributes to (row, section), one
// per distinct term, sorted by term. Text is tokenized; every other type
// indexes the canonical string of each element as an exact key.
// Vector elements continue the position count of the previous element.
func (ic *IndexColumn) postingsFor(v *codec.Value, row model.RowID, section model.Section) []index.Posting {
	if v.IsEmpty() {
		return nil
	}

	byTerm := make(map[string]*index.Posting)
	add := func(term string, position uint32) {
		if term == "" {
			return
		}
		p, ok := byTerm[term]
		if !ok {
			p = &index.Posting{Term: term, Row: row, Section: section}
			byTerm[term] = p
		}
		p.Freq++
		if ic.column.WithPosition {
			p.Positions = append(p.Positions, position)
		}
	}

	if v.Type.IsText() {
		var offset uint32
		for _, text := range v.Strings() {
			tokens := ic.tokenizer.Tokenize(text)
			var next uint32
			for _, tok := range tokens {
				add(tok.Term, offset+tok.Position)
				if tok.Position+1 > next {
					next = tok.Position + 1
				}
			}
			offset += next
		}
	} else {
		for i, key := range v.Strings() {
			add(key, uint32(i))
		}
	}

	out := make([]index.Posting, 0, len(byTerm))
	for _, p := range byTerm {
		sort.Slice(p.Positions, func(a, b int) bool { return p.Positions[a] < p.Positions[b] })
		out = append(out, *p)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Term < out[b].Term })
	return out
}

// Postings returns the posting list of a term.
func (ic *IndexColumn) Postings(ctx context.Context, term string) (index.PostingList, error) {
	return ic.store.Postings(ctx, term)
}

// RowPostings returns the postings of one (row, section).
func (ic *IndexColumn) RowPostings(ctx context.Context, row model.RowID, section model.Section) ([]index.Posting, error) {
	return ic.store.RowPostings(ctx, row, section)
}

// Terms returns every indexed term in lexical order.
func (ic *IndexColumn) Terms(ctx context.Context) ([]string, error) {
	return ic.store.Terms(ctx)
}

// SimilarTerms returns the indexed terms within maxDistance edits of term
// after it went through the column tokenizer, closest first.
func (ic *IndexColumn) SimilarTerms(ctx context.Context, term string, maxDistance, limit int) ([]typoutil.Match, error) {
	if tokens := ic.tokenizer.Tokenize(term); len(tokens) == 1 {
		term = tokens[0].Term
	}
	terms, err := ic.store.Terms(ctx)
	if err != nil {
		return nil, err
	}
	return typoutil.Near(term, terms, maxDistance, limit), nil
}

// Search returns the distinct rows holding term, in row order.
// The query is passed through the column tokenizer first, so "Hello"
// finds rows indexed as "hello"; every resulting term must match.
func (ic *IndexColumn) Search(ctx context.Context, query string) ([]model.RowID, error) {
	terms := []string{query}
	if tokens := ic.tokenizer.Tokenize(query); len(tokens) > 0 {
		terms = terms[:0]
		for _, tok := range tokens {
			terms = append(terms, tok.Term)
		}
	}

	var result map[model.RowID]struct{}
	for _, term := range terms {
		list, err := ic.store.Postings(ctx, term)
		if err != nil {
			return nil, err
		}
		rows := make(map[model.RowID]struct{}, len(list))
		for _, p := range list {
			if result == nil {
				rows[p.Row] = struct{}{}
			} else if _, ok := result[p.Row]; ok {
				rows[p.Row] = struct{}{}
			}
		}
		result = rows
		if len(result) == 0 {
			break
		}
	}

	out := make([]model.RowID, 0, len(result))
	for row := range result {
		out = append(out, row)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out, nil
}
