// Package jsonwrite produces the engine's pretty-printed JSON output for
// indexes, word counts, and search results, grounded on
// original_source/Project/src/SimpleJsonWriter.java: newline-separated,
// indented elements, and scores formatted to exactly 8 decimal digits via
// "%.8f" — encoding/json's float formatting has no fixed-precision mode,
// so this is the one place the engine hand-rolls JSON assembly rather than
// using a struct tag; everywhere else that field tags suffice, see the
// ambient stack's use of encoding/json via pkg/rpc and pkg/events.
package jsonwrite

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arjunmenon/lexo/internal/index"
)

const indentUnit = "  "

func indent(level int) string {
	return strings.Repeat(indentUnit, level)
}

func quote(s string) string {
	return strconv.Quote(s)
}

// WriteIndex writes idx as a pretty JSON object: stem -> location ->
// [positions...], with stems, locations, and positions all already sorted
// by the index's own iteration order.
func WriteIndex(w io.Writer, idx *index.SafeIndex) error {
	bw := bufio.NewWriter(w)
	stems := idx.StemSet()

	if len(stems) == 0 {
		bw.WriteString("{\n}")
		return bw.Flush()
	}

	bw.WriteString("{\n")
	for i, stem := range stems {
		bw.WriteString(indent(1))
		bw.WriteString(quote(stem))
		bw.WriteString(": ")
		writeLocationMap(bw, idx, stem, 1)
		if i < len(stems)-1 {
			bw.WriteString(",")
		}
		bw.WriteString("\n")
	}
	bw.WriteString("}")
	return bw.Flush()
}

func writeLocationMap(bw *bufio.Writer, idx *index.SafeIndex, stem string, level int) {
	locations := idx.PathSet(stem)
	if len(locations) == 0 {
		bw.WriteString("{\n")
		bw.WriteString(indent(level))
		bw.WriteString("}")
		return
	}
	bw.WriteString("{\n")
	for i, loc := range locations {
		bw.WriteString(indent(level + 1))
		bw.WriteString(quote(loc))
		bw.WriteString(": ")
		writePositions(bw, idx.PositionSet(stem, loc))
		if i < len(locations)-1 {
			bw.WriteString(",")
		}
		bw.WriteString("\n")
	}
	bw.WriteString(indent(level))
	bw.WriteString("}")
}

func writePositions(bw *bufio.Writer, positions []int) {
	if len(positions) == 0 {
		bw.WriteString("[\n]")
		return
	}
	bw.WriteString("[\n")
	for i, p := range positions {
		bw.WriteString(indent(3))
		bw.WriteString(strconv.Itoa(p))
		if i < len(positions)-1 {
			bw.WriteString(",")
		}
		bw.WriteString("\n")
	}
	bw.WriteString(indent(2))
	bw.WriteString("]")
}

// WriteCounts writes a location -> wordCount object, in the index's sorted
// location order.
func WriteCounts(w io.Writer, idx *index.SafeIndex) error {
	bw := bufio.NewWriter(w)
	locations := idx.SortedLocations()
	counts := idx.Counts()

	if len(locations) == 0 {
		bw.WriteString("{\n}")
		return bw.Flush()
	}

	bw.WriteString("{\n")
	for i, loc := range locations {
		bw.WriteString(indent(1))
		bw.WriteString(quote(loc))
		bw.WriteString(": ")
		bw.WriteString(strconv.Itoa(counts[loc]))
		if i < len(locations)-1 {
			bw.WriteString(",")
		}
		bw.WriteString("\n")
	}
	bw.WriteString("}")
	return bw.Flush()
}

// WriteResults writes the query-result object: canonical query key ->
// array of {count, score, where} objects, in the order keys is given.
func WriteResults(w io.Writer, keys []string, get func(key string) []index.SearchResult) error {
	bw := bufio.NewWriter(w)

	if len(keys) == 0 {
		bw.WriteString("{\n}")
		return bw.Flush()
	}

	bw.WriteString("{\n")
	for i, key := range keys {
		bw.WriteString(indent(1))
		bw.WriteString(quote(key))
		bw.WriteString(": ")
		writeResultArray(bw, get(key))
		if i < len(keys)-1 {
			bw.WriteString(",")
		}
		bw.WriteString("\n")
	}
	bw.WriteString("}")
	return bw.Flush()
}

func writeResultArray(bw *bufio.Writer, results []index.SearchResult) {
	if len(results) == 0 {
		bw.WriteString("[\n")
		bw.WriteString(indent(1))
		bw.WriteString("]")
		return
	}
	bw.WriteString("[\n")
	for i, r := range results {
		bw.WriteString(indent(2))
		bw.WriteString("{\n")
		bw.WriteString(indent(3))
		bw.WriteString(fmt.Sprintf("%s: %d,\n", quote("count"), r.Matches))
		bw.WriteString(indent(3))
		bw.WriteString(fmt.Sprintf("%s: %s,\n", quote("score"), formatScore(r.Score)))
		bw.WriteString(indent(3))
		bw.WriteString(fmt.Sprintf("%s: %s\n", quote("where"), quote(r.Location)))
		bw.WriteString(indent(2))
		bw.WriteString("}")
		if i < len(results)-1 {
			bw.WriteString(",")
		}
		bw.WriteString("\n")
	}
	bw.WriteString(indent(1))
	bw.WriteString("]")
}

// formatScore renders score with exactly 8 decimal digits, matching the
// original writer's "%.8f" formatting.
func formatScore(score float64) string {
	return fmt.Sprintf("%.8f", score)
}
