package index

import (
	"sort"
	"strings"
)

// SearchResult is a single scored hit for a query: matches is the total
// number of positions contributed by every matching stem at location, and
// score is matches divided by that location's word count.
type SearchResult struct {
	Location string
	Matches  int
	Score    float64
}

// accumulator folds per-stem matches into per-location SearchResults while
// a search is in progress, then produces the final ranked slice.
type accumulator struct {
	order   []string
	byLoc   map[string]*SearchResult
	wordCnt map[string]int
}

func newAccumulator() *accumulator {
	return &accumulator{
		byLoc:   make(map[string]*SearchResult),
		wordCnt: make(map[string]int),
	}
}

// add folds n additional matches for location into the accumulator,
// recomputing its score against count (the location's word count).
func (a *accumulator) add(location string, n, count int) {
	r, ok := a.byLoc[location]
	if !ok {
		r = &SearchResult{Location: location}
		a.byLoc[location] = r
		a.order = append(a.order, location)
	}
	r.Matches += n
	a.wordCnt[location] = count
	if count > 0 {
		r.Score = float64(r.Matches) / float64(count)
	}
}

// sorted freezes the accumulated results and returns them ordered by the
// spec's ranking rule: higher score first, ties broken by higher matches,
// remaining ties broken by case-insensitive ascending location.
func (a *accumulator) sorted() []SearchResult {
	out := make([]SearchResult, len(a.order))
	for i, loc := range a.order {
		out[i] = *a.byLoc[loc]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Matches != out[j].Matches {
			return out[i].Matches > out[j].Matches
		}
		return strings.ToLower(out[i].Location) < strings.ToLower(out[j].Location)
	})
	return out
}
