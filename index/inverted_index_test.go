package index

import (
	"bytes"
	"encoding/gob"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-column-index/model"
)

func posting(term string, row model.RowID, section model.Section, positions ...uint32) Posting {
	return Posting{Term: term, Row: row, Section: section, Freq: uint32(len(positions)), Positions: positions}
}

func TestInvertedIndex_AddAndRemove(t *testing.T) {
	ii := NewInvertedIndex()
	ii.Apply(Delta{Add: []Posting{
		posting("hello", 1, 1, 0),
		posting("world", 1, 1, 1),
		posting("hello", 2, 1, 0),
	}})

	assert.Equal(t, []string{"hello", "world"}, ii.Terms())
	list := ii.Postings("hello")
	require.Len(t, list, 2)
	assert.Equal(t, model.RowID(1), list[0].Row)
	assert.Equal(t, model.RowID(2), list[1].Row)

	ii.Apply(Delta{Remove: []Posting{posting("hello", 1, 1, 0), posting("world", 1, 1, 1)}})
	assert.Equal(t, []string{"hello"}, ii.Terms())
	assert.Len(t, ii.Postings("hello"), 1)
	assert.Empty(t, ii.Postings("world"))
}

func TestInvertedIndex_KeepsRowSectionOrder(t *testing.T) {
	ii := NewInvertedIndex()
	ii.Apply(Delta{Add: []Posting{
		posting("x", 3, 2, 0),
		posting("x", 1, 2, 0),
		posting("x", 3, 1, 0),
		posting("x", 2, 1, 0),
	}})

	list := ii.Postings("x")
	got := make([][2]uint32, 0, len(list))
	for _, p := range list {
		got = append(got, [2]uint32{uint32(p.Row), uint32(p.Section)})
	}
	assert.Equal(t, [][2]uint32{{1, 2}, {2, 1}, {3, 1}, {3, 2}}, got)
}

func TestInvertedIndex_Accumulates(t *testing.T) {
	ii := NewInvertedIndex()
	p := posting("hello", 1, 1, 0, 4)

	ii.Apply(Delta{Add: []Posting{p}})
	ii.Apply(Delta{Add: []Posting{p}})

	list := ii.Postings("hello")
	require.Len(t, list, 1, "re-adding keeps a single posting per key")
	assert.Equal(t, uint32(4), list[0].Freq)
	assert.Equal(t, []uint32{0, 0, 4, 4}, list[0].Positions)

	ii.Apply(Delta{Remove: []Posting{p}})
	list = ii.Postings("hello")
	require.Len(t, list, 1)
	assert.Equal(t, uint32(2), list[0].Freq)
	assert.Equal(t, []uint32{0, 4}, list[0].Positions)

	ii.Apply(Delta{Remove: []Posting{p}})
	assert.Empty(t, ii.Postings("hello"))
	assert.Equal(t, 0, ii.Len())
}

func TestInvertedIndex_RemoveMissingIsNoop(t *testing.T) {
	ii := NewInvertedIndex()
	ii.Apply(Delta{Add: []Posting{posting("a", 1, 1, 0)}})

	ii.Apply(Delta{Remove: []Posting{
		posting("missing", 1, 1, 0),
		posting("a", 2, 1, 0),
		posting("a", 1, 2, 0),
	}})

	assert.Len(t, ii.Postings("a"), 1)
}

func TestInvertedIndex_RemoveBeforeAdd(t *testing.T) {
	ii := NewInvertedIndex()
	p := posting("same", 1, 1, 0)
	ii.Apply(Delta{Add: []Posting{p}})

	// Old and new value share a term: the delta must leave it present once.
	ii.Apply(Delta{Remove: []Posting{p}, Add: []Posting{p}})

	list := ii.Postings("same")
	require.Len(t, list, 1)
	assert.Equal(t, uint32(1), list[0].Freq)
}

func TestInvertedIndex_RowPostings(t *testing.T) {
	ii := NewInvertedIndex()
	ii.Apply(Delta{Add: []Posting{
		posting("world", 1, 1, 1),
		posting("hello", 1, 1, 0),
		posting("other", 1, 2, 0),
		posting("hello", 2, 1, 0),
	}})

	got := ii.RowPostings(1, 1)
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].Term)
	assert.Equal(t, "world", got[1].Term)
	assert.Empty(t, ii.RowPostings(9, 1))
}

func TestInvertedIndex_ReturnsCopies(t *testing.T) {
	ii := NewInvertedIndex()
	ii.Apply(Delta{Add: []Posting{posting("a", 1, 1, 7)}})

	list := ii.Postings("a")
	list[0].Positions[0] = 99
	list[0].Freq = 42

	again := ii.Postings("a")
	assert.Equal(t, []uint32{7}, again[0].Positions)
	assert.Equal(t, uint32(1), again[0].Freq)
}

func TestInvertedIndex_Gob(t *testing.T) {
	ii := NewInvertedIndex()
	ii.Apply(Delta{Add: []Posting{posting("hello", 1, 1, 0), posting("world", 1, 1, 1)}})

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(ii))

	loaded := &InvertedIndex{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(loaded))
	assert.Equal(t, ii.Terms(), loaded.Terms())
	assert.Equal(t, ii.Postings("world"), loaded.Postings("world"))

	empty := NewInvertedIndex()
	buf.Reset()
	require.NoError(t, gob.NewEncoder(&buf).Encode(empty))
	loaded = &InvertedIndex{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(loaded))
	assert.NotNil(t, loaded.Index)
}

func TestInvertedIndex_ConcurrentApply(t *testing.T) {
	ii := NewInvertedIndex()
	var wg sync.WaitGroup
	for row := model.RowID(1); row <= 50; row++ {
		wg.Add(1)
		go func(row model.RowID) {
			defer wg.Done()
			ii.Apply(Delta{Add: []Posting{posting("shared", row, 1, 0)}})
		}(row)
	}
	wg.Wait()

	list := ii.Postings("shared")
	require.Len(t, list, 50)
	for i, p := range list {
		assert.Equal(t, model.RowID(i+1), p.Row)
	}
}

func TestMergeRemove(t *testing.T) {
	existing := Posting{Term: "a", Row: 1, Section: 1, Freq: 3, Positions: []uint32{1, 1, 5}}

	left, keep := MergeRemove(existing, Posting{Freq: 1, Positions: []uint32{1}})
	assert.True(t, keep)
	assert.Equal(t, uint32(2), left.Freq)
	assert.Equal(t, []uint32{1, 5}, left.Positions)
	assert.Equal(t, []uint32{1, 1, 5}, existing.Positions, "input is not modified")

	_, keep = MergeRemove(existing, Posting{Freq: 3})
	assert.False(t, keep)
}
