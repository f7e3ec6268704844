// Package changefeed publishes an audit event for every successful entity write.
package changefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"institute-service/common/metrics"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change describes one committed write.
type Change struct {
	Entity string    `json:"entity"`
	Op     string    `json:"op"`
	ID     uuid.UUID `json:"id"`
	Owner  uuid.UUID `json:"owner"`
	At     time.Time `json:"at"`
}

// Publisher never fails the caller; delivery problems are logged and counted.
type Publisher interface {
	Publish(ctx context.Context, change Change)
	Close() error
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Partitioner = sarama.NewHashPartitioner
	return config
}

func NewProducer(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, err
	}

	logger.Info("kafka change feed initialized", "brokers", brokers, "topic", topic)
	return NewWithProducer(producer, topic, logger, m), nil
}

// NewWithProducer wraps an existing sarama producer (tests pass a mock).
func NewWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger, m *metrics.Metrics) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}
}

// Publish keys messages by owner so one owner's changes stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, change Change) {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	value, err := json.Marshal(change)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal change", "error", err)
		return
	}

	start := time.Now()
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(change.Owner.String()),
		Value: sarama.ByteEncoder(value),
	})
	p.metrics.Messaging.RecordPublish(ctx, p.topic, time.Since(start), err)

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish change", "entity", change.Entity, "op", change.Op, "error", err)
		return
	}
	p.logger.DebugContext(ctx, "change published", "entity", change.Entity, "op", change.Op, "partition", partition, "offset", offset)
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

// Noop is used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Change) {}
func (Noop) Close() error                    { return nil }
