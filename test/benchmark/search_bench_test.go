// Grounded on the teacher's test/benchmark/search_benchmark_test.go,
// retargeted from its boolean query parser/executor/ranker at this
// engine's own canonical-key search path: no query language, just sorted
// unique stems against a pre-built index.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/arjunmenon/lexo/internal/index"
	"github.com/arjunmenon/lexo/internal/lexer"
	"github.com/arjunmenon/lexo/internal/search"
)

func buildBenchIndex(b *testing.B, locations int) *index.SafeIndex {
	idx := index.NewSafeIndex()
	words := []string{"distributed", "search", "index", "crawl", "build", "lock", "queue", "rank"}
	for i := 0; i < locations; i++ {
		loc := fmt.Sprintf("doc-%d.txt", i)
		for pos, w := range words {
			idx.Add(w, loc, pos+1)
		}
	}
	return idx
}

// BenchmarkCanonicalKey measures the cost of turning a query line into its
// de-duplication key.
func BenchmarkCanonicalKey(b *testing.B) {
	stems := lexer.UniqueSortedStems("distributed search and indexing and ranking")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = search.CanonicalKey(stems)
	}
}

// BenchmarkExactSearchOverLargeIndex measures exact-search latency as the
// number of indexed locations grows.
func BenchmarkExactSearchOverLargeIndex(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("locations_%d", n), func(b *testing.B) {
			idx := buildBenchIndex(b, n)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = idx.Search([]string{"search", "index"}, true)
			}
		})
	}
}

// BenchmarkPartialSearchOverLargeIndex is BenchmarkExactSearchOverLargeIndex's
// prefix-matching counterpart.
func BenchmarkPartialSearchOverLargeIndex(b *testing.B) {
	idx := buildBenchIndex(b, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.Search([]string{"sear", "ind"}, false)
	}
}
