package index

import "github.com/arjunmenon/lexo/internal/rwmutex"

// SafeIndex routes every InvertedIndex operation through a RWMutex:
// mutators hold the write lock for their entire duration, reads hold the
// read lock for theirs. It is the composition-based analogue of the
// original ThreadSafeInvertedIndex, which instead subclassed InvertedIndex
// and overrode every method — the spec's DESIGN NOTES call for expressing
// this as a façade holding a lock and an inner index rather than as a
// class hierarchy, since Go has no subclassing to begin with.
//
// All view-returning methods (PathSet, PositionSet, StemSet, Counts,
// Search, ExactSearch, PartialSearch) copy out of the locked region before
// returning, so callers can keep using the result after SafeIndex releases
// the lock even while a build is still in progress — the snapshot
// strategy the spec's DESIGN NOTES recommend over holding the lock open
// across the call boundary.
type SafeIndex struct {
	lock  *rwmutex.RWMutex
	index *InvertedIndex
}

// NewSafeIndex wraps a fresh, empty InvertedIndex with reader-writer
// synchronization.
func NewSafeIndex() *SafeIndex {
	return &SafeIndex{
		lock:  rwmutex.New(),
		index: New(),
	}
}

// Add inserts a single (stem, location, position) triple under the write
// lock.
func (s *SafeIndex) Add(stem, location string, position int) {
	tok := s.lock.WriteLock()
	defer s.unlockWrite(tok)
	s.index.Add(stem, location, position)
}

// AddAll merges other into the shared index atomically: external readers
// observe either the pre-merge or the post-merge state, never a partial
// merge, because the entire merge runs under one write-lock acquisition.
// other is an unsynchronized *InvertedIndex — the local index populated by
// a single build task before the bulk merge.
func (s *SafeIndex) AddAll(other *InvertedIndex) {
	tok := s.lock.WriteLock()
	defer s.unlockWrite(tok)
	s.index.AddAll(other)
}

func (s *SafeIndex) unlockWrite(tok Token) {
	if err := s.lock.WriteUnlock(tok); err != nil {
		panic(err)
	}
}

// Token re-exports rwmutex.Token so callers of SafeIndex never need to
// import internal/rwmutex directly.
type Token = rwmutex.Token

// Contains reports whether stem is present in the index.
func (s *SafeIndex) Contains(stem string) bool {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.Contains(stem)
}

// ContainsLocation reports whether stem is present at location.
func (s *SafeIndex) ContainsLocation(stem, location string) bool {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.ContainsLocation(stem, location)
}

// ContainsPosition reports whether stem is recorded at location with
// exactly position.
func (s *SafeIndex) ContainsPosition(stem, location string, position int) bool {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.ContainsPosition(stem, location, position)
}

// PathSet returns a snapshot of the locations stem appears in.
func (s *SafeIndex) PathSet(stem string) []string {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.PathSet(stem)
}

// PositionSet returns a snapshot of the positions recorded for stem at
// location.
func (s *SafeIndex) PositionSet(stem, location string) []int {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.PositionSet(stem, location)
}

// StemSet returns a snapshot of every stem in the index.
func (s *SafeIndex) StemSet() []string {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.StemSet()
}

// Counts returns a snapshot of the per-location word counts.
func (s *SafeIndex) Counts() map[string]int {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.Counts()
}

// SortedLocations returns the locations known to wordCount, sorted.
func (s *SafeIndex) SortedLocations() []string {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.SortedLocations()
}

// Search performs an exact or partial search under the read lock.
func (s *SafeIndex) Search(stems []string, exact bool) []SearchResult {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.Search(stems, exact)
}

// ExactSearch performs an exact search under the read lock.
func (s *SafeIndex) ExactSearch(stems []string) []SearchResult {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.ExactSearch(stems)
}

// PartialSearch performs a partial (prefix) search under the read lock.
func (s *SafeIndex) PartialSearch(stems []string) []SearchResult {
	s.lock.ReadLock()
	defer s.lock.ReadUnlock()
	return s.index.PartialSearch(stems)
}
