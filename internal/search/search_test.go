package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arjunmenon/lexo/internal/index"
)

func writeQueryFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture file: %v", err)
	}
	return path
}

func buildFixtureIndex() *index.SafeIndex {
	idx := index.NewSafeIndex()
	idx.Add("quick", "/a.txt", 1)
	idx.Add("quick", "/a.txt", 2)
	idx.Add("fox", "/a.txt", 3)
	return idx
}

func TestRunQueriesSingleThreaded(t *testing.T) {
	idx := buildFixtureIndex()
	path := writeQueryFile(t, "quick\n")

	results, err := New(nil).RunQueries(idx, path, true, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := results.Keys()
	if len(keys) != 1 || keys[0] != "quick" {
		t.Fatalf("expected a single canonical key \"quick\", got %v", keys)
	}
	ranked := results.Get("quick")
	if len(ranked) != 1 || ranked[0].Matches != 2 {
		t.Fatalf("expected one result with 2 matches, got %v", ranked)
	}
}

func TestRunQueriesDeduplicatesCanonicalKeys(t *testing.T) {
	idx := buildFixtureIndex()
	path := writeQueryFile(t, "quick fox\nfox quick\n")

	results, err := New(nil).RunQueries(idx, path, true, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := results.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected both lines to collapse to one canonical key, got %v", keys)
	}
}

func TestRunQueriesSkipsBlankLines(t *testing.T) {
	idx := buildFixtureIndex()
	path := writeQueryFile(t, "   \n123\nquick\n")

	results, err := New(nil).RunQueries(idx, path, true, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results.Keys()) != 1 {
		t.Fatalf("expected only the \"quick\" line to produce a result, got %v", results.Keys())
	}
}

func TestRunQueriesMultiThreadedMatchesSingleThreaded(t *testing.T) {
	idx := buildFixtureIndex()
	path := writeQueryFile(t, "quick\nfox\nquick fox\n")

	single, err := New(nil).RunQueries(idx, path, true, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	multi, err := New(nil).RunQueries(idx, path, true, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range single.Keys() {
		s := single.Get(key)
		m := multi.Get(key)
		if len(s) != len(m) {
			t.Fatalf("key %q: result counts differ: %v vs %v", key, s, m)
		}
		for i := range s {
			if s[i] != m[i] {
				t.Fatalf("key %q: results differ at %d: %v vs %v", key, i, s[i], m[i])
			}
		}
	}
}

func TestCanonicalKeyJoinsSortedStems(t *testing.T) {
	if got := CanonicalKey([]string{"fox", "quick"}); got != "fox quick" {
		t.Fatalf("expected \"fox quick\", got %q", got)
	}
}
