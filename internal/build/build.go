// Package build implements the file builder (C5): walking a filesystem
// tree for .text/.txt files, tokenizing and stemming each line, and
// populating a shared index either directly (single-threaded) or via the
// work queue's local-index-then-merge pattern (multi-threaded). Grounded
// on original_source/Project/src/InvertedIndexBuilder.java and
// ConcurrentInvertedIndexBuilder.java.
package build

import (
	"bufio"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/arjunmenon/lexo/internal/index"
	"github.com/arjunmenon/lexo/internal/lexer"
	"github.com/arjunmenon/lexo/internal/workqueue"
	"github.com/arjunmenon/lexo/pkg/lexoerr"
)

// DefaultThreads is the worker count used when -threads is invalid or <1.
const DefaultThreads = workqueue.Default

// Builder populates a SafeIndex from a directory tree of text files.
type Builder struct {
	logger *slog.Logger
}

// New returns a Builder that logs to the given logger, or slog.Default if
// nil.
func New(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With("component", "build")}
}

// Build walks startPath and indexes every regular file whose lowercased
// name ends in ".text" or ".txt". Symbolic links to files are resolved;
// symbolic links to directories are not descended into. When threads
// is 0, files are processed one at a time on the caller's goroutine; a
// positive thread count runs one task per file on a workqueue of that
// size, each populating a fresh local index before merging it into dst via
// dst.AddAll.
//
// A failure to read any single file is logged and the file is skipped;
// Build never aborts the whole walk over one bad file, per the engine's
// best-effort propagation policy.
func (b *Builder) Build(dst *index.SafeIndex, startPath string, threads int) error {
	files, err := listTextFiles(startPath)
	if err != nil {
		return lexoerr.New(lexoerr.ErrIO, startPath, "walking directory tree")
	}

	if threads <= 0 {
		for _, path := range files {
			b.indexFileInto(dst, path)
		}
		return nil
	}

	q := workqueue.New(threads, b.logger)
	for _, path := range files {
		path := path
		q.Submit(func() {
			local := index.New()
			b.indexFileLines(local, path)
			dst.AddAll(local)
		})
	}
	q.Await()
	q.Shutdown()
	q.Wait()
	return nil
}

// indexFileInto tokenizes and stems path directly into dst under dst's own
// write lock, one add call per token — used in single-threaded mode, where
// there is no contention to avoid by batching into a local index first.
func (b *Builder) indexFileInto(dst *index.SafeIndex, path string) {
	file, err := os.Open(path)
	if err != nil {
		b.logger.Error("skipping unreadable file", "path", path, "error", err)
		return
	}
	defer file.Close()

	counter := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		for _, tok := range lexer.Tokenize(scanner.Text()) {
			counter++
			dst.Add(lexer.Stem(tok), path, counter)
		}
	}
	if err := scanner.Err(); err != nil {
		b.logger.Error("error reading file", "path", path, "error", err)
	}
}

// indexFileLines is the same tokenize-and-stem walk as indexFileInto, but
// against a local, unsynchronized index — used by the multi-threaded path
// before the bulk addAll merge.
func (b *Builder) indexFileLines(local *index.InvertedIndex, path string) {
	file, err := os.Open(path)
	if err != nil {
		b.logger.Error("skipping unreadable file", "path", path, "error", err)
		return
	}
	defer file.Close()

	counter := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		for _, tok := range lexer.Tokenize(scanner.Text()) {
			counter++
			local.Add(lexer.Stem(tok), path, counter)
		}
	}
	if err := scanner.Err(); err != nil {
		b.logger.Error("error reading file", "path", path, "error", err)
	}
}

// listTextFiles walks root and returns every file whose lowercased name
// ends in ".text" or ".txt", in the order the walk visits them. A symbolic
// link to a file is returned as its resolved path; a symbolic link to a
// directory is not descended into.
func listTextFiles(root string) ([]string, error) {
	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			path = resolved
		}
		name := strings.ToLower(d.Name())
		if strings.HasSuffix(name, ".text") || strings.HasSuffix(name, ".txt") {
			files = append(files, path)
		}
		return nil
	})
	return files, walkErr
}
