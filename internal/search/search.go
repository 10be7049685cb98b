// Package search implements the search builder (C6): reading a query
// file line by line, tokenizing and stemming each line into a
// de-duplicated canonical key, and running exact or partial lookups
// against a shared index — single-threaded or, via the work queue, one
// task per line with the results map guarded by a mutex. Grounded on
// original_source/Project/src/SearchBuilder.java and
// ConcurrentSearchBuilder.java.
package search

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/arjunmenon/lexo/internal/index"
	"github.com/arjunmenon/lexo/internal/lexer"
	"github.com/arjunmenon/lexo/internal/workqueue"
	"github.com/arjunmenon/lexo/pkg/lexoerr"
)

// Results is an ordered mapping from canonical query key to ranked result
// list. Keys is the insertion order, so JSON output can iterate results in
// the order queries were first seen rather than Go's unspecified map
// order.
type Results struct {
	mu    sync.Mutex
	keys  []string
	byKey map[string][]index.SearchResult
}

func newResults() *Results {
	return &Results{byKey: make(map[string][]index.SearchResult)}
}

// putIfAbsent records ranked under key unless key is already present,
// returning whether it inserted. Guarded by a mutex so concurrent search
// tasks can share one Results safely — the de-duplication check and the
// store must happen as a single critical section, or two tasks racing on
// the same canonical key could both decide to run the (redundant) search.
func (r *Results) putIfAbsent(key string, ranked []index.SearchResult) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[key]; ok {
		return false
	}
	r.byKey[key] = ranked
	r.keys = append(r.keys, key)
	return true
}

// Keys returns the canonical query keys in first-seen order.
func (r *Results) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the ranked result list for key.
func (r *Results) Get(key string) []index.SearchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byKey[key]
}

// Builder runs batches of queries against a shared index.
type Builder struct {
	logger *slog.Logger
}

// New returns a Builder that logs to the given logger, or slog.Default if
// nil.
func New(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With("component", "search")}
}

// RunQueries reads queryFilePath line by line and runs each distinct
// canonical query against idx, returning the accumulated Results. When
// threads is 0, lines are processed one at a time on the caller's
// goroutine; a positive thread count submits one task per line to a
// workqueue of that size.
func (b *Builder) RunQueries(idx *index.SafeIndex, queryFilePath string, exact bool, threads int) (*Results, error) {
	lines, err := readLines(queryFilePath)
	if err != nil {
		return nil, lexoerr.New(lexoerr.ErrIO, queryFilePath, "reading query file")
	}

	results := newResults()

	if threads <= 0 {
		for _, line := range lines {
			b.runLine(idx, results, line, exact)
		}
		return results, nil
	}

	q := workqueue.New(threads, b.logger)
	for _, line := range lines {
		line := line
		q.Submit(func() {
			b.runLine(idx, results, line, exact)
		})
	}
	q.Await()
	q.Shutdown()
	q.Wait()
	return results, nil
}

// runLine stems line into a canonical key, skips it if empty or already
// present in results, and otherwise runs the search and stores it.
func (b *Builder) runLine(idx *index.SafeIndex, results *Results, line string, exact bool) {
	stems := lexer.UniqueSortedStems(line)
	if len(stems) == 0 {
		return
	}
	key := CanonicalKey(stems)
	if !results.putIfAbsent(key, nil) {
		return
	}
	ranked := idx.Search(stems, exact)
	results.mu.Lock()
	results.byKey[key] = ranked
	results.mu.Unlock()
}

// CanonicalKey joins sorted, unique stems with single spaces — the
// de-duplication key for a query line.
func CanonicalKey(stems []string) string {
	return strings.Join(stems, " ")
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
