// Package auditlog persists run telemetry — one row per build, search, or
// crawl invocation — to PostgreSQL. It never stores index data itself,
// only metadata about runs, so it stays useful even against a database
// with no knowledge of the engine's documents. Grounded on the teacher's
// pkg/postgres client and internal/ingestion/publisher, with the
// document-ingestion INSERT replaced by a run-record INSERT and the
// shard-assignment logic dropped (this engine has no shards).
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/arjunmenon/lexo/pkg/config"
	_ "github.com/lib/pq"
)

// Client wraps a PostgreSQL connection used for run-telemetry persistence.
type Client struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens a PostgreSQL connection per cfg and verifies it with a ping.
func New(cfg config.AuditConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening audit database connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging audit database: %w", err)
	}
	return &Client{db: db, logger: slog.Default().With("component", "auditlog")}, nil
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// DB returns the underlying database handle, for health.AuditCheck to
// probe without this package importing pkg/health.
func (c *Client) DB() *sql.DB {
	return c.db
}

// EnsureSchema creates the runs table if it does not already exist. Called
// once at startup rather than via a migration tool, matching the scale of
// a single-table telemetry log.
func (c *Client) EnsureSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS runs (
	id          BIGSERIAL PRIMARY KEY,
	kind        TEXT NOT NULL,
	detail      TEXT NOT NULL,
	item_count  INTEGER NOT NULL,
	duration_ms BIGINT NOT NULL,
	succeeded   BOOLEAN NOT NULL,
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("creating runs table: %w", err)
	}
	return nil
}

// Kind identifies which engine phase a Run record describes.
type Kind string

const (
	KindBuild  Kind = "build"
	KindSearch Kind = "search"
	KindCrawl  Kind = "crawl"
)

// Run describes a single build, search, or crawl invocation.
type Run struct {
	Kind      Kind
	Detail    string
	ItemCount int
	Duration  time.Duration
	Succeeded bool
	Err       error
	StartedAt time.Time
}

// Record inserts a Run row. Failures to record are logged, not returned as
// fatal — telemetry loss should never fail the run it describes.
func (c *Client) Record(ctx context.Context, r Run) {
	var errText sql.NullString
	if r.Err != nil {
		errText = sql.NullString{String: r.Err.Error(), Valid: true}
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO runs (kind, detail, item_count, duration_ms, succeeded, error, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(r.Kind), r.Detail, r.ItemCount, r.Duration.Milliseconds(), r.Succeeded, errText, r.StartedAt,
	)
	if err != nil {
		c.logger.Error("failed to record run", "kind", r.Kind, "error", err)
	}
}

// RecentRuns returns the most recent runs of the given kind, newest first.
func (c *Client) RecentRuns(ctx context.Context, kind Kind, limit int) ([]Run, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT kind, detail, item_count, duration_ms, succeeded, error, started_at
		 FROM runs WHERE kind = $1 ORDER BY started_at DESC LIMIT $2`,
		string(kind), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var k string
		var durationMs int64
		var errText sql.NullString
		if err := rows.Scan(&k, &r.Detail, &r.ItemCount, &durationMs, &r.Succeeded, &errText, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.Kind = Kind(k)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		if errText.Valid {
			r.Err = fmt.Errorf("%s", errText.String)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}
