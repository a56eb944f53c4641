package index

import (
	"bytes"
	"encoding/gob"
	"sort"
	"sync"

	"github.com/gcbaptista/go-column-index/model"
)

// InvertedIndex maps a term to the postings of every (row, section) the
// term occurs in. It is the in-memory posting table of one index column.
type InvertedIndex struct {
	Mu    sync.RWMutex
	Index map[string]PostingList
}

// NewInvertedIndex returns an empty, ready to use index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{Index: make(map[string]PostingList)}
}

// gobInvertedIndexData is a helper struct for Gob encoding/decoding InvertedIndex data.
// It excludes the mutex.
type gobInvertedIndexData struct {
	Index map[string]PostingList
}

// GobEncode implements the gob.GobEncoder interface for InvertedIndex.
func (ii *InvertedIndex) GobEncode() ([]byte, error) {
	ii.Mu.RLock()
	defer ii.Mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobInvertedIndexData{Index: ii.Index}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for InvertedIndex.
func (ii *InvertedIndex) GobDecode(data []byte) error {
	decoded := gobInvertedIndexData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decoded); err != nil {
		return err
	}

	ii.Mu.Lock()
	defer ii.Mu.Unlock()

	ii.Index = decoded.Index
	// an empty map is encoded as nil
	if ii.Index == nil {
		ii.Index = make(map[string]PostingList)
	}
	return nil
}

// Apply removes then adds the postings of d under a single write lock, so
// readers see either none or all of it.
func (ii *InvertedIndex) Apply(d Delta) {
	ii.Mu.Lock()
	defer ii.Mu.Unlock()
	ii.ApplyUnsafe(d)
}

// ApplyUnsafe is Apply for callers that already hold Mu.
func (ii *InvertedIndex) ApplyUnsafe(d Delta) {
	if ii.Index == nil {
		ii.Index = make(map[string]PostingList)
	}
	for _, p := range d.Remove {
		ii.removeUnsafe(p)
	}
	for _, p := range d.Add {
		ii.addUnsafe(p)
	}
}

func (ii *InvertedIndex) removeUnsafe(p Posting) {
	list, ok := ii.Index[p.Term]
	if !ok {
		return
	}
	i := list.Find(p.Row, p.Section)
	if i < 0 {
		return
	}
	if left, keep := MergeRemove(list[i], p); keep {
		list[i] = left
		return
	}
	list = append(list[:i], list[i+1:]...)
	if len(list) == 0 {
		delete(ii.Index, p.Term)
		return
	}
	ii.Index[p.Term] = list
}

func (ii *InvertedIndex) addUnsafe(p Posting) {
	list := ii.Index[p.Term]
	i := list.search(p.Row, p.Section)
	if i < len(list) && list[i].Row == p.Row && list[i].Section == p.Section {
		list[i] = MergeAdd(list[i], p)
		return
	}
	entry := p
	entry.Positions = append([]uint32(nil), p.Positions...)
	list = append(list, Posting{})
	copy(list[i+1:], list[i:])
	list[i] = entry
	ii.Index[p.Term] = list
}

// Postings returns a copy of the posting list of term.
func (ii *InvertedIndex) Postings(term string) PostingList {
	ii.Mu.RLock()
	defer ii.Mu.RUnlock()
	return clonePostings(ii.Index[term])
}

// RowPostings returns every posting of (row, section), sorted by term.
func (ii *InvertedIndex) RowPostings(row model.RowID, section model.Section) []Posting {
	ii.Mu.RLock()
	defer ii.Mu.RUnlock()

	var out []Posting
	for _, list := range ii.Index {
		if i := list.Find(row, section); i >= 0 {
			out = append(out, clonePosting(list[i]))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Term < out[b].Term })
	return out
}

// Terms returns the indexed terms in lexical order.
func (ii *InvertedIndex) Terms() []string {
	ii.Mu.RLock()
	defer ii.Mu.RUnlock()

	terms := make([]string, 0, len(ii.Index))
	for term := range ii.Index {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Len returns the number of distinct terms.
func (ii *InvertedIndex) Len() int {
	ii.Mu.RLock()
	defer ii.Mu.RUnlock()
	return len(ii.Index)
}

// Reset drops every posting.
func (ii *InvertedIndex) Reset() {
	ii.Mu.Lock()
	defer ii.Mu.Unlock()
	ii.Index = make(map[string]PostingList)
}

func clonePosting(p Posting) Posting {
	p.Positions = append([]uint32(nil), p.Positions...)
	return p
}

func clonePostings(list PostingList) PostingList {
	if list == nil {
		return nil
	}
	out := make(PostingList, len(list))
	for i, p := range list {
		out[i] = clonePosting(p)
	}
	return out
}
