// Package e2e exercises the full build -> index -> search pipeline, and
// separately the crawl -> index pipeline, end to end in-process
// against real filesystem and HTTP fixtures rather than mocks. Grounded on
// the teacher's test/e2e/platform_test.go, adapted from its
// gateway/ingestion/indexer/search HTTP health-check shape down to this
// single-binary engine's own pipeline, which needs no live external
// services to exercise end to end.
package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arjunmenon/lexo/internal/build"
	"github.com/arjunmenon/lexo/internal/crawl"
	"github.com/arjunmenon/lexo/internal/htmlfetch"
	"github.com/arjunmenon/lexo/internal/index"
	"github.com/arjunmenon/lexo/internal/jsonwrite"
	"github.com/arjunmenon/lexo/internal/search"
	"github.com/arjunmenon/lexo/pkg/resilience"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

// TestBuildAndSearchEndToEnd builds an index from a small filesystem
// corpus multi-threaded, runs a batch of queries against it, and checks
// both the in-memory results and their JSON serialization.
func TestBuildAndSearchEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "the quick brown fox jumps over the lazy dog")
	writeFile(t, dir, "b.txt", "a quick fox is quick and clever")
	writeFile(t, dir, "c.txt", "dogs and foxes rarely cooperate")

	idx := index.NewSafeIndex()
	if err := build.New(nil).Build(idx, dir, 4); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !idx.Contains("fox") {
		t.Fatalf("expected stem %q to be indexed", "fox")
	}

	queryFile := filepath.Join(dir, "queries.txt")
	if err := os.WriteFile(queryFile, []byte("fox\nquick dog\n"), 0o644); err != nil {
		t.Fatalf("writing query file: %v", err)
	}

	results, err := search.New(nil).RunQueries(idx, queryFile, false, 2)
	if err != nil {
		t.Fatalf("RunQueries: %v", err)
	}

	foxResults := results.Get("fox")
	if len(foxResults) == 0 {
		t.Fatalf("expected results for query %q", "fox")
	}
	for _, r := range foxResults {
		if r.Matches == 0 {
			t.Errorf("result for %s has zero matches", r.Location)
		}
	}

	var buf []byte
	w := &sliceWriter{buf: &buf}
	if err := jsonwrite.WriteResults(w, results.Keys(), results.Get); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if len(buf) == 0 {
		t.Fatal("expected non-empty results JSON")
	}
}

// TestCrawlAndIndexEndToEnd crawls a small linked fixture site served by
// httptest, then checks that the seed page's stems are in the resulting
// index.
func TestCrawlAndIndexEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/about">about</a> welcome home</body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>about this lexo engine</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fetcher := htmlfetch.New(5*time.Second, resilience.CircuitBreakerConfig{}, resilience.RetryConfig{MaxAttempts: 1}, 15*time.Second)
	c := crawl.New(fetcher, 3, nil)
	if err := c.Run(context.Background(), srv.URL+"/home", 5, 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	idx := c.Index()
	if !idx.Contains("welcom") && !idx.Contains("home") {
		t.Fatalf("expected crawled content to be indexed, stems: %v", idx.StemSet())
	}
}

type sliceWriter struct {
	buf *[]byte
}

func (s *sliceWriter) Write(p []byte) (int, error) {
	*s.buf = append(*s.buf, p...)
	return len(p), nil
}
