// Package benchmark contains Go benchmarks for the inverted index and its
// thread-safe façade, measuring add/search throughput and allocation
// behavior. Grounded on the teacher's test/benchmark/index_bench_test.go,
// retargeted from its sharded MemoryIndex at the single in-process
// InvertedIndex and SafeIndex this engine actually has.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/arjunmenon/lexo/internal/index"
)

// BenchmarkInvertedIndexAdd measures per-token insert throughput into the
// unsynchronized index, the hot path of a single build task.
func BenchmarkInvertedIndexAdd(b *testing.B) {
	idx := index.New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Add("bench", fmt.Sprintf("doc-%d.txt", i%1000), i+1)
	}
}

// BenchmarkInvertedIndexExactSearch measures exact-search latency over an
// index pre-loaded with 10,000 locations for a single stem.
func BenchmarkInvertedIndexExactSearch(b *testing.B) {
	idx := index.New()
	for i := 0; i < 10000; i++ {
		idx.Add("search", fmt.Sprintf("doc-%d.txt", i), 1)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results := idx.ExactSearch([]string{"search"})
		_ = results
	}
}

// BenchmarkSafeIndexAddSingleWriter measures SafeIndex.Add's write-lock
// acquire/release overhead from a single goroutine, as in single-threaded
// Build.
func BenchmarkSafeIndexAddSingleWriter(b *testing.B) {
	idx := index.NewSafeIndex()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Add("bench", fmt.Sprintf("doc-%d.txt", i%1000), i+1)
	}
}

// BenchmarkSafeIndexAddAllMerge measures the cost of merging a
// pre-populated local index into a shared SafeIndex, the hot path of a
// multi-threaded build task's final step.
func BenchmarkSafeIndexAddAllMerge(b *testing.B) {
	local := index.New()
	for i := 0; i < 200; i++ {
		local.Add("merge", fmt.Sprintf("doc-%d.txt", i), i+1)
	}

	idx := index.NewSafeIndex()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.AddAll(local)
	}
}
