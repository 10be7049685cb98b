package lexer

import "testing"

func TestTokenizeSplitsOnNonLetters(t *testing.T) {
	got := Tokenize("The quick-fox, jumps2 over...the3 Lazy dog")
	want := []string{"the", "quick", "fox", "jumps", "over", "the", "lazy", "dog"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestTokenizePreservesRepeats(t *testing.T) {
	got := Tokenize("quick quick fox")
	if len(got) != 3 || got[0] != "quick" || got[1] != "quick" {
		t.Fatalf("expected repeats preserved in order, got %v", got)
	}
}

func TestStemReducesSuffixes(t *testing.T) {
	if got := Stem("running"); got != "run" {
		t.Fatalf("expected \"running\" to stem to \"run\", got %q", got)
	}
}

func TestUniqueSortedStemsDeduplicatesAndSorts(t *testing.T) {
	got := UniqueSortedStems("runs running run quick quick")
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct stems, got %v", got)
	}
	if got[0] != "quick" || got[1] != "run" {
		t.Fatalf("expected sorted [quick run], got %v", got)
	}
}

func TestUniqueSortedStemsEmptyForBlankInput(t *testing.T) {
	got := UniqueSortedStems("   ... 123 ")
	if len(got) != 0 {
		t.Fatalf("expected no stems for input with no letters, got %v", got)
	}
}
