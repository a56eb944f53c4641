package index

import (
	"sort"

	"github.com/gcbaptista/go-column-index/model"
)

// Posting records that Term occurs in a row, within one section.
// (Term, Row, Section) is the posting key; Freq and Positions are metadata
// that accumulate when the same key is added more than once.
type Posting struct {
	Term      string
	Row       model.RowID
	Section   model.Section
	Freq      uint32
	Positions []uint32 // sorted ascending, may repeat after accumulation
}

// PostingList is the postings of one term, sorted by Row then Section.
type PostingList []Posting

// Delta is the change one index update makes: postings attributable to the
// old value are removed, postings of the new value are added. A Delta is
// always applied as a whole.
type Delta struct {
	Remove []Posting
	Add    []Posting
}

// IsEmpty reports whether applying d would change nothing.
func (d Delta) IsEmpty() bool {
	return len(d.Remove) == 0 && len(d.Add) == 0
}

// search returns the index of the first posting not less than (row, section).
func (pl PostingList) search(row model.RowID, section model.Section) int {
	return sort.Search(len(pl), func(i int) bool {
		if pl[i].Row != row {
			return pl[i].Row > row
		}
		return pl[i].Section >= section
	})
}

// Find returns the index of the posting for (row, section), or -1.
func (pl PostingList) Find(row model.RowID, section model.Section) int {
	i := pl.search(row, section)
	if i < len(pl) && pl[i].Row == row && pl[i].Section == section {
		return i
	}
	return -1
}

// MergeAdd folds add into existing: frequencies are summed and positions merged.
func MergeAdd(existing, add Posting) Posting {
	merged := existing
	merged.Freq += add.Freq
	merged.Positions = mergePositions(existing.Positions, add.Positions)
	return merged
}

// MergeRemove takes the contribution of rem out of existing. The second
// result is false when nothing is left and the posting must be deleted.
func MergeRemove(existing, rem Posting) (Posting, bool) {
	if rem.Freq >= existing.Freq {
		return Posting{}, false
	}
	left := existing
	left.Freq -= rem.Freq
	left.Positions = subtractPositions(existing.Positions, rem.Positions)
	return left, true
}

func mergePositions(a, b []uint32) []uint32 {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// subtractPositions removes one occurrence of every element of b from a.
func subtractPositions(a, b []uint32) []uint32 {
	if len(b) == 0 {
		return append([]uint32(nil), a...)
	}
	out := make([]uint32, 0, len(a))
	j := 0
	for _, p := range a {
		for j < len(b) && b[j] < p {
			j++
		}
		if j < len(b) && b[j] == p {
			j++
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
