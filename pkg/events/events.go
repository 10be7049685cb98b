// Package events defines the engine's Kafka event types and a producer for
// publishing them: DocumentIndexed for each location a build has merged
// into the shared index, and PageCrawled for each page a crawl has merged.
// cmd/lexo publishes them once the build or crawl phase has finished.
// Grounded on the teacher's pkg/kafka (renamed from a
// generic platform event bus to this engine's own event vocabulary).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// DocumentIndexed describes one location the file builder merged into the
// shared index.
type DocumentIndexed struct {
	Location  string    `json:"location"`
	WordCount int       `json:"wordCount"`
	IndexedAt time.Time `json:"indexedAt"`
}

// PageCrawled describes one fetched page the crawler merged into its
// index.
type PageCrawled struct {
	URL       string    `json:"url"`
	WordCount int       `json:"wordCount"`
	LinkCount int       `json:"linkCount"`
	CrawledAt time.Time `json:"crawledAt"`
}

// Producer publishes JSON-encoded events to a Kafka topic.
type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewProducer creates a Producer writing to topic on the given brokers.
func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    50,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &Producer{
		writer: w,
		logger: slog.Default().With("component", "events-producer", "topic", topic),
	}
}

// PublishDocumentIndexed publishes a DocumentIndexed event keyed by
// location.
func (p *Producer) PublishDocumentIndexed(ctx context.Context, e DocumentIndexed) error {
	return p.publish(ctx, e.Location, e)
}

// PublishPageCrawled publishes a PageCrawled event keyed by URL.
func (p *Producer) PublishPageCrawled(ctx context.Context, e PageCrawled) error {
	return p.publish(ctx, e.URL, e)
}

func (p *Producer) publish(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	msg := kafka.Message{Key: []byte(key), Value: data}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event", "key", key, "error", err)
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer reads events from a Kafka topic and dispatches them to Handler.
type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	handler Handler
}

// Handler is a callback invoked for each consumed event.
type Handler func(ctx context.Context, key []byte, value []byte) error

// NewConsumer creates a Consumer for topic on the given brokers.
func NewConsumer(brokers []string, topic, groupID string, handler Handler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	return &Consumer{
		reader:  r,
		logger:  slog.Default().With("component", "events-consumer", "topic", topic),
		handler: handler,
	}
}

// Run enters the consume loop until ctx is cancelled, invoking handler for
// each message — used by the CLI's -tail-events flag to print index/crawl
// events as they arrive.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", "reason", ctx.Err())
			return c.reader.Close()
		default:
		}
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}
		if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
			c.logger.Error("failed to process message", "offset", msg.Offset, "error", err)
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message", "offset", msg.Offset, "error", err)
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
