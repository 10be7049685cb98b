// Package crawl implements the bounded web crawler (C7): a BFS-style walk
// from a seed URL, fetching and indexing up to a fixed budget of pages,
// with a single critical section guarding the check-seen/add-seen/
// decrement-budget/submit-task sequence so the total number of crawl tasks
// submitted never exceeds the initial budget. Grounded on
// original_source/Project/src/Crawler.java (formerly WebCrawler.java in
// the upstream project).
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/arjunmenon/lexo/internal/htmlclean"
	"github.com/arjunmenon/lexo/internal/htmlfetch"
	"github.com/arjunmenon/lexo/internal/index"
	"github.com/arjunmenon/lexo/internal/lexer"
	"github.com/arjunmenon/lexo/internal/linkparse"
	"github.com/arjunmenon/lexo/internal/workqueue"
	"github.com/arjunmenon/lexo/pkg/lexoerr"
)

// DefaultBudget is the crawl budget used when -limit is invalid or <1.
const DefaultBudget = 50

// Crawler walks a web graph from a seed URL, indexing up to budget pages.
type Crawler struct {
	fetcher      *htmlfetch.Fetcher
	logger       *slog.Logger
	maxRedirects int

	mu     sync.Mutex
	seen   map[string]struct{}
	budget int

	queue *workqueue.WorkQueue
	dst   *index.SafeIndex
}

// New returns a Crawler using fetcher for HTML retrieval, following up to
// maxRedirects redirects per fetch.
func New(fetcher *htmlfetch.Fetcher, maxRedirects int, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		fetcher:      fetcher,
		logger:       logger.With("component", "crawl"),
		maxRedirects: maxRedirects,
	}
}

// Run cleans seedURL, fetches and indexes it, then crawls outward along
// its links breadth-first until budget pages have been submitted for
// crawling, merging each page's local index into dst.
//
// The seed is indexed exactly once, inline, before any crawl task is
// submitted — the spec's run() operation permits either submitting the
// seed as an ordinary crawl task or processing it inline so long as it is
// indexed exactly once; this implementation takes the inline path so the
// seed never competes with itself for the "index exactly once" guarantee
// under concurrent crawl tasks.
func (c *Crawler) Run(ctx context.Context, seedURL string, budget, threads int) error {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return lexoerr.New(lexoerr.ErrMalformedInput, seedURL, "parsing seed URL")
	}
	cleanSeed := linkparse.Clean(seed)

	body, ok, err := c.fetcher.Fetch(ctx, seed, c.maxRedirects)
	if err != nil {
		return lexoerr.New(lexoerr.ErrIO, cleanSeed, "fetching seed URL")
	}
	if !ok {
		c.logger.Info("seed did not resolve to fetchable HTML", "url", cleanSeed)
		return nil
	}

	linkSearchHTML := htmlclean.StripBlocks(body)
	links := linkparse.ExtractLinks(seed, linkSearchHTML)
	all := append([]string{cleanSeed}, links...)

	c.seen = make(map[string]struct{}, len(all))
	for _, u := range all {
		c.seen[u] = struct{}{}
	}
	c.budget = budget
	c.dst = index.NewSafeIndex()

	// The seed consumes one unit of budget just like any other discovered
	// link — with budget 0, nothing is indexed at all, not even the seed.
	if !c.takeBudget() {
		return nil
	}
	c.indexPage(cleanSeed, body)

	c.queue = workqueue.New(threads, c.logger)
	for _, u := range links {
		if !c.takeBudget() {
			break
		}
		target := u
		c.queue.Submit(func() { c.crawlTask(ctx, target) })
	}
	c.queue.Await()
	c.queue.Shutdown()
	c.queue.Wait()
	return nil
}

// Index returns the index populated by Run.
func (c *Crawler) Index() *index.SafeIndex {
	return c.dst
}

// crawlTask fetches u, extracts its links, submits crawl tasks for
// previously-unseen links within budget, and indexes u's plain text.
func (c *Crawler) crawlTask(ctx context.Context, rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}
	body, ok, err := c.fetcher.Fetch(ctx, u, c.maxRedirects)
	if err != nil {
		c.logger.Error("fetch failed", "url", rawURL, "error", err)
		return
	}
	if !ok {
		return
	}

	linkSearchHTML := htmlclean.StripBlocks(body)
	links := linkparse.ExtractLinks(u, linkSearchHTML)
	for _, link := range links {
		if c.checkAddDecrementSubmit(link) {
			target := link
			c.queue.Submit(func() { c.crawlTask(ctx, target) })
		}
	}

	c.indexPage(rawURL, body)
}

// checkAddDecrementSubmit is the single critical section that decides
// whether link should become a new crawl task: it must see, add, and
// decrement atomically so the total number of tasks submitted across every
// goroutine never exceeds the initial budget.
func (c *Crawler) checkAddDecrementSubmit(link string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[link]; dup {
		return false
	}
	if c.budget <= 0 {
		return false
	}
	c.seen[link] = struct{}{}
	c.budget--
	return true
}

// takeBudget is checkAddDecrementSubmit's seed-loop counterpart: the seed's
// own links are already all recorded in seen by Run, so it only needs to
// guard the budget decrement.
func (c *Crawler) takeBudget() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.budget <= 0 {
		return false
	}
	c.budget--
	return true
}

// indexPage strips tags and entities from body to produce plain text,
// tokenizes and stems it with a counter starting at 1, and merges the
// resulting local index into the shared index.
func (c *Crawler) indexPage(location string, body []byte) {
	text := htmlclean.StripTags(body)
	local := index.New()
	counter := 0
	for _, tok := range lexer.Tokenize(text) {
		counter++
		local.Add(lexer.Stem(tok), location, counter)
	}
	c.dst.AddAll(local)
}
