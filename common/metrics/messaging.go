package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MessagingMetrics covers both NATS subjects and Kafka topics; "subject" holds either.
type MessagingMetrics struct {
	messagesPublished  metric.Int64Counter
	messagesConsumed   metric.Int64Counter
	processingDuration metric.Float64Histogram
	publishDuration    metric.Float64Histogram
	messageErrors      metric.Int64Counter
	connectionsActive  metric.Int64UpDownCounter
}

func NewMessagingMetrics(meter metric.Meter) (*MessagingMetrics, error) {
	mm := &MessagingMetrics{}

	var err error

	if mm.messagesPublished, err = meter.Int64Counter(
		"messaging.messages.published",
		metric.WithDescription("Total number of messages published"),
		metric.WithUnit("{message}"),
	); err != nil {
		return nil, err
	}

	if mm.messagesConsumed, err = meter.Int64Counter(
		"messaging.messages.consumed",
		metric.WithDescription("Total number of messages consumed"),
		metric.WithUnit("{message}"),
	); err != nil {
		return nil, err
	}

	if mm.processingDuration, err = meter.Float64Histogram(
		"messaging.message.processing_duration",
		metric.WithDescription("Time spent handling a consumed message"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if mm.publishDuration, err = meter.Float64Histogram(
		"messaging.message.publish_duration",
		metric.WithDescription("Time spent publishing a message"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if mm.messageErrors, err = meter.Int64Counter(
		"messaging.message.errors",
		metric.WithDescription("Total number of publish or processing errors"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if mm.connectionsActive, err = meter.Int64UpDownCounter(
		"messaging.connections.active",
		metric.WithDescription("Current number of broker connections"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}

	return mm, nil
}

func (mm *MessagingMetrics) RecordPublish(ctx context.Context, subject string, duration time.Duration, err error) {
	if mm == nil || mm.messagesPublished == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("subject", subject))
	mm.messagesPublished.Add(ctx, 1, attrs)
	mm.publishDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		mm.messageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("subject", subject),
			attribute.String("error_type", "publish"),
		))
	}
}

func (mm *MessagingMetrics) RecordConsume(ctx context.Context, subject string, duration time.Duration, err error) {
	if mm == nil || mm.messagesConsumed == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("subject", subject))
	mm.messagesConsumed.Add(ctx, 1, attrs)
	mm.processingDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		mm.messageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("subject", subject),
			attribute.String("error_type", "processing"),
		))
	}
}

func (mm *MessagingMetrics) RecordConnectionChange(ctx context.Context, delta int64) {
	if mm == nil || mm.connectionsActive == nil {
		return
	}
	mm.connectionsActive.Add(ctx, delta)
}
