// Command lexo builds a positional inverted index from a filesystem tree
// or a crawled web graph, answers batched free-text queries against it,
// and optionally serves the built index over a query RPC, publishes
// per-unit-of-work events to Kafka, and records run telemetry to
// PostgreSQL. Flag surface and control flow are grounded on
// original_source/Project/src/Driver.java, wired the way the teacher's
// cmd/indexer/main.go sequences config load, logger setup, component
// construction, and signal-aware shutdown.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/arjunmenon/lexo/internal/build"
	"github.com/arjunmenon/lexo/internal/crawl"
	"github.com/arjunmenon/lexo/internal/htmlfetch"
	"github.com/arjunmenon/lexo/internal/index"
	"github.com/arjunmenon/lexo/internal/jsonwrite"
	"github.com/arjunmenon/lexo/internal/lexer"
	"github.com/arjunmenon/lexo/internal/search"
	"github.com/arjunmenon/lexo/pkg/auditlog"
	"github.com/arjunmenon/lexo/pkg/config"
	"github.com/arjunmenon/lexo/pkg/events"
	"github.com/arjunmenon/lexo/pkg/health"
	"github.com/arjunmenon/lexo/pkg/logger"
	"github.com/arjunmenon/lexo/pkg/metrics"
	"github.com/arjunmenon/lexo/pkg/redis"
	"github.com/arjunmenon/lexo/pkg/rediscache"
	"github.com/arjunmenon/lexo/pkg/resilience"
	"github.com/arjunmenon/lexo/pkg/rpc"
	"github.com/arjunmenon/lexo/pkg/tracing"
)

var traceSeq atomic.Uint64

// newTraceID returns a process-unique trace identifier for a span tree —
// a run has no distributed caller to inherit a trace ID from, so this
// mints one locally from the clock plus a monotonic counter to keep
// concurrently handled RPC queries distinguishable in the logs.
func newTraceID() string {
	return fmt.Sprintf("%x-%d", time.Now().UnixNano(), traceSeq.Add(1))
}

func main() {
	start := time.Now()

	path := flag.String("path", "", "build index from a filesystem tree")
	seedURL := flag.String("url", "", "crawl from a seed URL (implies multi-threaded)")
	threads := flag.Int("threads", build.DefaultThreads, "worker count; invalid or <1 defaults to 5")
	limit := flag.Int("limit", crawl.DefaultBudget, "crawl budget; invalid or <1 defaults to 50")
	indexPath := flag.String("index", "", "write index JSON to this path")
	countsPath := flag.String("counts", "", "write per-location token-count JSON to this path")
	queryPath := flag.String("query", "", "run queries from file")
	exact := flag.Bool("exact", false, "exact-match search (default is partial/prefix)")
	resultsPath := flag.String("results", "", "write query results JSON to this path")
	configPath := flag.String("config", "", "path to an ambient-stack YAML config file")
	serveAddr := flag.String("serve", "", "serve the built index for querying at ADDR (Search.Query RPC)")
	tailEvents := flag.Bool("tail-events", false, "consume and print DocumentIndexed/PageCrawled Kafka events, then exit")
	flag.Parse()

	if *threads < 1 {
		*threads = build.DefaultThreads
	}
	if *limit < 1 {
		*limit = crawl.DefaultBudget
	}
	if *indexPath == "" {
		*indexPath = "index.json"
	}
	if *countsPath == "" {
		*countsPath = "counts.json"
	}
	if *resultsPath == "" {
		*resultsPath = "results.json"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lexo: loading config:", err)
		return
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("cmd/lexo")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx, runSpan := tracing.StartSpan(ctx, "lexo.run", newTraceID())
	defer func() {
		runSpan.End()
		runSpan.Log()
	}()

	m := metrics.New()
	checker := health.NewChecker()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				log.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	var producer *events.Producer
	if cfg.Kafka.Enabled {
		producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.DocumentIndexed)
		defer producer.Close()
		checker.Register("kafka", health.KafkaCheck(cfg.Kafka.Brokers))
	}

	var audit *auditlog.Client
	if cfg.Audit.Enabled {
		audit, err = auditlog.New(cfg.Audit)
		if err != nil {
			log.Error("audit log unavailable, continuing without run telemetry", "error", err)
			audit = nil
		} else {
			defer audit.Close()
			if err := audit.EnsureSchema(ctx); err != nil {
				log.Error("failed to ensure audit schema", "error", err)
			}
			checker.Register("audit", health.AuditCheck(audit.DB()))
		}
	}

	var cache *rediscache.Cache
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Error("redis unavailable, continuing without query cache", "error", err)
		} else {
			defer rdb.Close()
			cache = rediscache.New(rdb, cfg.Redis.CacheTTL)
			checker.Register("redis", health.RedisCheck(rdb))
		}
	}

	if *tailEvents {
		runTailEvents(ctx, cfg, log)
		return
	}

	idx := index.NewSafeIndex()

	if *path != "" {
		runBuild(ctx, idx, *path, *threads, audit, producer, m, log)
	}

	if *seedURL != "" {
		runCrawl(ctx, idx, *seedURL, *limit, *threads, cfg, audit, producer, m, log)
	}

	if *indexPath != "" && (*path != "" || *seedURL != "") {
		writeJSON(*indexPath, func(f *os.File) error { return jsonwrite.WriteIndex(f, idx) }, log)
	}
	if *countsPath != "" && (*path != "" || *seedURL != "") {
		writeJSON(*countsPath, func(f *os.File) error { return jsonwrite.WriteCounts(f, idx) }, log)
	}

	if *queryPath != "" {
		runSearch(ctx, idx, *queryPath, *exact, *threads, *resultsPath, cache, audit, m, log)
	}

	if *serveAddr != "" {
		runServe(idx, cache, checker, *serveAddr, log)
	}

	elapsed := time.Since(start).Seconds()
	log.Info("run complete", "elapsed_seconds", elapsed)
	fmt.Printf("Elapsed: %f seconds\n", elapsed)
}

// runBuild runs the file builder over path, recording run telemetry and
// publishing a DocumentIndexed event per successfully indexed location.
func runBuild(ctx context.Context, idx *index.SafeIndex, path string, threads int, audit *auditlog.Client, producer *events.Producer, m *metrics.Metrics, log *slog.Logger) {
	ctx, span := tracing.StartChildSpan(ctx, "build")
	defer span.End()
	span.SetAttr("path", path)
	span.SetAttr("threads", threads)

	started := time.Now()
	before := len(idx.SortedLocations())
	b := build.New(log)
	timer := prometheusTimer(m.BuildDuration)
	err := b.Build(idx, path, threads)
	timer()
	after := idx.SortedLocations()
	indexed := len(after) - before
	span.SetAttr("files_indexed", indexed)

	if producer != nil {
		counts := idx.Counts()
		for _, loc := range after {
			_ = producer.PublishDocumentIndexed(ctx, events.DocumentIndexed{
				Location:  loc,
				WordCount: counts[loc],
				IndexedAt: time.Now().UTC(),
			})
		}
	}
	m.FilesIndexedTotal.Add(float64(indexed))
	if audit != nil {
		audit.Record(ctx, auditlog.Run{
			Kind:      auditlog.KindBuild,
			Detail:    path,
			ItemCount: indexed,
			Duration:  time.Since(started),
			Succeeded: err == nil,
			Err:       err,
			StartedAt: started,
		})
	}
	if err != nil {
		log.Error("build failed", "path", path, "error", err)
	}
}

// runCrawl runs the bounded web crawler from seedURL and merges its index
// into idx.
func runCrawl(ctx context.Context, idx *index.SafeIndex, seedURL string, limit, threads int, cfg *config.Config, audit *auditlog.Client, producer *events.Producer, m *metrics.Metrics, log *slog.Logger) {
	ctx, span := tracing.StartChildSpan(ctx, "crawl")
	defer span.End()
	span.SetAttr("seed_url", seedURL)
	span.SetAttr("limit", limit)

	started := time.Now()
	fetcher := htmlfetch.New(
		10*time.Second,
		resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.Resilience.FailureThreshold,
			ResetTimeout:     cfg.Resilience.OpenDuration,
		},
		resilience.RetryConfig{
			MaxAttempts:  cfg.Resilience.MaxRetries,
			InitialDelay: cfg.Resilience.BaseBackoff,
		},
		30*time.Second,
	)
	c := crawl.New(fetcher, 5, log)
	m.CrawlBudgetRemaining.Set(float64(limit))
	err := c.Run(ctx, seedURL, limit, threads)
	if err != nil {
		log.Error("crawl failed", "url", seedURL, "error", err)
	}

	crawled := c.Index()
	locations := crawled.SortedLocations()
	idx.AddAll(toUnsynchronized(crawled))

	if producer != nil {
		counts := crawled.Counts()
		for _, loc := range locations {
			_ = producer.PublishPageCrawled(ctx, events.PageCrawled{
				URL:       loc,
				WordCount: counts[loc],
				CrawledAt: time.Now().UTC(),
			})
		}
	}
	m.PagesCrawledTotal.Add(float64(len(locations)))
	span.SetAttr("pages_crawled", len(locations))
	if audit != nil {
		audit.Record(ctx, auditlog.Run{
			Kind:      auditlog.KindCrawl,
			Detail:    seedURL,
			ItemCount: len(locations),
			Duration:  time.Since(started),
			Succeeded: err == nil,
			Err:       err,
			StartedAt: started,
		})
	}
}

// toUnsynchronized copies a SafeIndex's contents into a fresh, plain
// InvertedIndex suitable for a single AddAll merge into another SafeIndex
// — the crawler hands back its own SafeIndex, but SafeIndex.AddAll takes
// an unsynchronized source, matching the local-index-then-merge pattern
// the build and crawl packages already use internally.
func toUnsynchronized(src *index.SafeIndex) *index.InvertedIndex {
	dst := index.New()
	for _, stem := range src.StemSet() {
		for _, loc := range src.PathSet(stem) {
			for _, pos := range src.PositionSet(stem, loc) {
				dst.Add(stem, loc, pos)
			}
		}
	}
	return dst
}

// runSearch runs a batch of queries from queryPath against idx, optionally
// consulting and populating the query-result cache, and writes the
// results JSON if resultsPath is set.
func runSearch(ctx context.Context, idx *index.SafeIndex, queryPath string, exact bool, threads int, resultsPath string, cache *rediscache.Cache, audit *auditlog.Client, m *metrics.Metrics, log *slog.Logger) {
	ctx, span := tracing.StartChildSpan(ctx, "search")
	defer span.End()
	span.SetAttr("query_file", queryPath)
	span.SetAttr("exact", exact)

	started := time.Now()
	mode := "partial"
	if exact {
		mode = "exact"
	}

	if cache == nil {
		s := search.New(log)
		results, err := s.RunQueries(idx, queryPath, exact, threads)
		if err != nil {
			log.Error("search failed", "query_file", queryPath, "error", err)
			return
		}
		span.SetAttr("queries", len(results.Keys()))
		m.SearchQueriesTotal.WithLabelValues(mode).Add(float64(len(results.Keys())))
		if resultsPath != "" {
			writeJSON(resultsPath, func(f *os.File) error {
				return jsonwrite.WriteResults(f, results.Keys(), results.Get)
			}, log)
		}
		recordSearchAudit(audit, queryPath, len(results.Keys()), started, nil)
		return
	}

	lines, err := readQueryLines(queryPath)
	if err != nil {
		log.Error("search failed", "query_file", queryPath, "error", err)
		return
	}
	keys := make([]string, 0, len(lines))
	byKey := make(map[string][]index.SearchResult, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		stems := lexer.UniqueSortedStems(line)
		if len(stems) == 0 {
			continue
		}
		key := search.CanonicalKey(stems)
		if seen[key] {
			continue
		}
		seen[key] = true
		results, _, err := cache.GetOrCompute(ctx, key, exact, func() ([]index.SearchResult, error) {
			return idx.Search(stems, exact), nil
		})
		if err != nil {
			log.Error("query failed", "key", key, "error", err)
			continue
		}
		keys = append(keys, key)
		byKey[key] = results
	}
	span.SetAttr("queries", len(keys))
	m.SearchQueriesTotal.WithLabelValues(mode).Add(float64(len(keys)))
	hits, misses := cache.Stats()
	m.CacheHitsTotal.Add(float64(hits))
	m.CacheMissesTotal.Add(float64(misses))
	if resultsPath != "" {
		writeJSON(resultsPath, func(f *os.File) error {
			return jsonwrite.WriteResults(f, keys, func(k string) []index.SearchResult { return byKey[k] })
		}, log)
	}
	recordSearchAudit(audit, queryPath, len(keys), started, nil)
}

func recordSearchAudit(audit *auditlog.Client, detail string, itemCount int, started time.Time, err error) {
	if audit == nil {
		return
	}
	audit.Record(context.Background(), auditlog.Run{
		Kind:      auditlog.KindSearch,
		Detail:    detail,
		ItemCount: itemCount,
		Duration:  time.Since(started),
		Succeeded: err == nil,
		Err:       err,
		StartedAt: started,
	})
}

func readQueryLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines, nil
}

// runServe starts the Search.Query RPC server and liveness/readiness HTTP
// handlers, blocking until the process receives an interrupt.
func runServe(idx *index.SafeIndex, cache *rediscache.Cache, checker *health.Checker, addr string, log *slog.Logger) {
	s := rpc.NewServer()
	s.Register("Search.Query", func(ctx context.Context, raw json.RawMessage) (any, error) {
		ctx, span := tracing.StartSpan(ctx, "rpc.search_query", newTraceID())
		defer func() {
			span.End()
			span.Log()
		}()

		var req rpc.QueryRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("decoding query request: %w", err)
		}
		start := time.Now()
		stems := lexer.UniqueSortedStems(joinTerms(req.Terms))
		key := search.CanonicalKey(stems)
		span.SetAttr("query", key)
		span.SetAttr("exact", req.Exact)
		var raw2 []index.SearchResult
		cached := false
		if cache != nil {
			if results, ok := cache.Get(ctx, key, req.Exact); ok {
				raw2 = results
				cached = true
			}
		}
		if raw2 == nil {
			raw2 = idx.Search(stems, req.Exact)
		}
		span.SetAttr("cached", cached)
		span.SetAttr("results", len(raw2))
		resp := rpc.QueryResponse{
			Query:     key,
			LatencyMs: time.Since(start).Milliseconds(),
			Cached:    cached,
		}
		for _, r := range raw2 {
			resp.Results = append(resp.Results, rpc.QueryResult{
				Location: r.Location,
				Matches:  r.Matches,
				Score:    r.Score,
			})
		}
		return resp, nil
	})

	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/live", checker.LiveHandler())
		mux.HandleFunc("/ready", checker.ReadyHandler())
		serveHTTP(log, "health", healthAddr(addr), mux)
	}()

	log.Info("rpc server starting", "addr", addr)
	if err := s.Serve(addr); err != nil {
		log.Error("rpc server stopped", "error", err)
	}
}

// healthAddr derives a liveness/readiness HTTP address one port above the
// RPC TCP address, so -serve ":9200" exposes health on ":9201".
func healthAddr(rpcAddr string) string {
	host, portStr, err := net.SplitHostPort(rpcAddr)
	if err != nil {
		return rpcAddr
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return rpcAddr
	}
	return net.JoinHostPort(host, strconv.Itoa(port+1))
}

func runTailEvents(ctx context.Context, cfg *config.Config, log *slog.Logger) {
	if !cfg.Kafka.Enabled {
		fmt.Fprintln(os.Stderr, "lexo: -tail-events requires kafka to be enabled in config")
		return
	}
	handler := func(ctx context.Context, key, value []byte) error {
		fmt.Printf("%s: %s\n", string(key), string(value))
		return nil
	}
	consumer := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.DocumentIndexed, "lexo-tail", handler)
	defer consumer.Close()
	if err := consumer.Run(ctx); err != nil {
		log.Error("event tail stopped", "error", err)
	}
}

func writeJSON(path string, write func(f *os.File) error, log *slog.Logger) {
	f, err := os.Create(path)
	if err != nil {
		log.Error("failed to create output file", "path", path, "error", err)
		return
	}
	defer f.Close()
	if err := write(f); err != nil {
		log.Error("failed to write output file", "path", path, "error", err)
	}
}

func serveHTTP(log *slog.Logger, name, addr string, handler http.Handler) {
	log.Info("http server starting", "name", name, "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("http server stopped", "name", name, "error", err)
	}
}

func prometheusTimer(h interface{ Observe(float64) }) func() {
	start := time.Now()
	return func() { h.Observe(time.Since(start).Seconds()) }
}

func joinTerms(terms []string) string {
	out := ""
	for i, t := range terms {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}
