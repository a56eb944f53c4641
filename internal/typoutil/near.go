package typoutil

import "sort"

// Match is a term within reach of the searched one.
type Match struct {
	Term     string `json:"term"`
	Distance int    `json:"distance"`
}

// Near returns the terms at most maxDistance edits away from term, the
// term itself included at distance 0. Results are ordered by distance and
// then lexically; limit > 0 truncates them.
func Near(term string, terms []string, maxDistance, limit int) []Match {
	matches := make([]Match, 0)
	if term == "" || maxDistance < 0 {
		return matches
	}

	for _, candidate := range terms {
		if d := Distance(term, candidate, maxDistance); d <= maxDistance {
			matches = append(matches, Match{Term: candidate, Distance: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Term < matches[j].Term
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
