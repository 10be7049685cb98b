// Package lexer implements the tokenizer and stemmer contracts the rest of
// the engine treats as external pure functions: splitting text into
// lowercase ASCII-letter tokens in text order, and reducing each token to
// its Snowball English stem. Grounded on
// original_source/Project/src/TextFileStemmer.java for the tokenization
// rule, and on the sibling example repo's use of
// github.com/kljensen/snowball/english (Xhy51-project_changes/indexer.go)
// for the stemming primitive — the teacher's own tokenizer package rolls a
// suffix-stripping approximation, but the spec treats stemming as an
// external contract, so the real Snowball implementation replaces it here.
package lexer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Tokenize splits text into non-empty, lowercase, ASCII-letter-only tokens,
// in text order, including repeats. Any run of characters that is not an
// ASCII letter — digits, punctuation, whitespace, non-ASCII letters — acts
// as a separator.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !isASCIILetter(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

func isASCIILetter(r rune) bool {
	return unicode.IsLetter(r) && r < unicode.MaxASCII
}

// Stem reduces a single lowercase token to its Snowball English stem.
func Stem(token string) string {
	return english.Stem(token, true)
}

// TokenizeAndStem splits text into tokens and stems each one, in text order.
func TokenizeAndStem(text string) []string {
	tokens := Tokenize(text)
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = Stem(tok)
	}
	return stems
}

// UniqueSortedStems tokenizes and stems text, then returns the distinct
// stems in sorted order — the canonical-key construction used by the
// search builder to de-duplicate query lines.
func UniqueSortedStems(text string) []string {
	stems := TokenizeAndStem(text)
	seen := make(map[string]struct{}, len(stems))
	out := make([]string, 0, len(stems))
	for _, s := range stems {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
