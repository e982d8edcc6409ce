// Package kafka publishes resolution events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/spin-location-service/internal/config"
	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/couchcryptid/spin-location-service/internal/observability"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes resolution events to the configured topic.
// It implements domain.Recorder.
type Publisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured resolution topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// Record publishes a single resolution event. Events for the same normalized
// query share a key and therefore a partition.
func (p *Publisher) Record(ctx context.Context, event domain.ResolutionEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		p.metrics.EventPublishErrors.Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventPublishErrors.Inc()
		return fmt.Errorf("publish resolution %s: %w", event.ID, err)
	}
	p.metrics.EventsPublished.Inc()
	p.logger.Debug("resolution published", "event_id", event.ID, "source", event.Resolved.Source)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a ResolutionEvent into a Kafka message.
func serializeToMessage(event domain.ResolutionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize resolution event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(domain.NormalizeQuery(event.Query)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(event.Resolved.Source)},
			{Key: "cache_hit", Value: []byte(strconv.FormatBool(event.CacheHit))},
			{Key: "resolved_at", Value: []byte(event.ResolvedAt.Format(time.RFC3339))},
		},
	}, nil
}
