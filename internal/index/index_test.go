package index

import "testing"

func TestAddAndContains(t *testing.T) {
	idx := New()
	idx.Add("run", "a.txt", 1)
	idx.Add("run", "a.txt", 3)

	if !idx.Contains("run") {
		t.Fatal("expected index to contain stem \"run\"")
	}
	if !idx.ContainsLocation("run", "a.txt") {
		t.Fatal("expected stem to be present at a.txt")
	}
	if !idx.ContainsPosition("run", "a.txt", 3) {
		t.Fatal("expected position 3 to be recorded")
	}
	if idx.ContainsPosition("run", "a.txt", 2) {
		t.Fatal("did not expect position 2 to be recorded")
	}
}

func TestAddIsIdempotent(t *testing.T) {
	idx := New()
	idx.Add("run", "a.txt", 1)
	idx.Add("run", "a.txt", 1)

	if got := idx.PositionSet("run", "a.txt"); len(got) != 1 {
		t.Fatalf("expected a single position after duplicate adds, got %v", got)
	}
}

func TestAddRaisesWordCountToMaxPosition(t *testing.T) {
	idx := New()
	idx.Add("run", "a.txt", 1)
	idx.Add("fast", "a.txt", 5)
	idx.Add("slow", "a.txt", 3)

	counts := idx.Counts()
	if counts["a.txt"] != 5 {
		t.Fatalf("expected word count 5, got %d", counts["a.txt"])
	}
}

func TestAddAllUnionsPositionsAndMaxesWordCount(t *testing.T) {
	a := New()
	a.Add("run", "a.txt", 1)
	a.Add("run", "a.txt", 5) // wordCount(a.txt) = 5

	b := New()
	b.Add("run", "a.txt", 2)
	b.Add("jump", "a.txt", 9) // wordCount(a.txt) = 9

	a.AddAll(b)

	if !a.ContainsPosition("run", "a.txt", 2) {
		t.Fatal("expected position from merged index to be present")
	}
	if !a.Contains("jump") {
		t.Fatal("expected stem from merged index to be present")
	}
	if got := a.Counts()["a.txt"]; got != 9 {
		t.Fatalf("expected merged word count to take the max (9), got %d", got)
	}
}

func TestAddAllNeverLowersWordCount(t *testing.T) {
	a := New()
	a.Add("run", "a.txt", 10)

	b := New()
	b.Add("jump", "a.txt", 2)

	a.AddAll(b)

	if got := a.Counts()["a.txt"]; got != 10 {
		t.Fatalf("expected word count to remain 10, got %d", got)
	}
}

func TestStemSetAndPathSetAreSorted(t *testing.T) {
	idx := New()
	idx.Add("zebra", "b.txt", 1)
	idx.Add("apple", "a.txt", 1)
	idx.Add("apple", "c.txt", 1)

	stems := idx.StemSet()
	if len(stems) != 2 || stems[0] != "apple" || stems[1] != "zebra" {
		t.Fatalf("expected sorted stems [apple zebra], got %v", stems)
	}

	paths := idx.PathSet("apple")
	if len(paths) != 2 || paths[0] != "a.txt" || paths[1] != "c.txt" {
		t.Fatalf("expected sorted paths [a.txt c.txt], got %v", paths)
	}
}

func TestExactSearchRanksByScoreThenMatchesThenLocation(t *testing.T) {
	idx := New()
	// b.txt: "run" once out of 2 words -> score 0.5
	idx.Add("run", "b.txt", 1)
	idx.Add("walk", "b.txt", 2)
	// a.txt: "run" twice out of 2 words -> score 1.0
	idx.Add("run", "a.txt", 1)
	idx.Add("run", "a.txt", 2)

	results := idx.ExactSearch([]string{"run"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Location != "a.txt" || results[0].Score != 1.0 {
		t.Fatalf("expected a.txt to rank first with score 1.0, got %+v", results[0])
	}
	if results[1].Location != "b.txt" || results[1].Score != 0.5 {
		t.Fatalf("expected b.txt second with score 0.5, got %+v", results[1])
	}
}

func TestExactSearchIgnoresPrefixMatches(t *testing.T) {
	idx := New()
	idx.Add("running", "a.txt", 1)

	results := idx.ExactSearch([]string{"run"})
	if len(results) != 0 {
		t.Fatalf("expected no exact matches for a prefix-only stem, got %v", results)
	}
}

func TestPartialSearchMatchesPrefixesOnly(t *testing.T) {
	idx := New()
	idx.Add("run", "a.txt", 1)
	idx.Add("runner", "a.txt", 2)
	idx.Add("runway", "b.txt", 1)
	idx.Add("jump", "c.txt", 1)

	results := idx.PartialSearch([]string{"run"})
	locs := map[string]bool{}
	for _, r := range results {
		locs[r.Location] = true
	}
	if !locs["a.txt"] || !locs["b.txt"] {
		t.Fatalf("expected a.txt and b.txt in partial search results, got %v", results)
	}
	if locs["c.txt"] {
		t.Fatal("did not expect c.txt (stem \"jump\") to match prefix \"run\"")
	}
}

func TestPartialSearchFoldsMultipleMatchingStemsIntoOneResult(t *testing.T) {
	idx := New()
	idx.Add("run", "a.txt", 1)
	idx.Add("runner", "a.txt", 2)
	idx.Add("runner", "a.txt", 3)

	results := idx.PartialSearch([]string{"run"})
	if len(results) != 1 {
		t.Fatalf("expected a single folded result, got %v", results)
	}
	if results[0].Matches != 3 {
		t.Fatalf("expected 3 total matches folded together, got %d", results[0].Matches)
	}
}
