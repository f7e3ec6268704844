package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"institute-service/common/metrics"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Notifier fans an Ended event out to the other service instances.
type Notifier interface {
	Notify(ctx context.Context, e Ended) error
}

type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewPublisher(conn *nats.Conn, subject string, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
		metrics: m,
	}
}

func (p *Publisher) Notify(ctx context.Context, e Ended) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	start := time.Now()
	err = p.conn.Publish(p.subject, data)
	p.metrics.Messaging.RecordPublish(ctx, p.subject, time.Since(start), err)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish session end", "subject", p.subject, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "session end published", "subject", p.subject, "reason", e.Reason)
	return nil
}

// Terminator ends sessions locally and tells the other instances.
type Terminator struct {
	revocations *Revocations
	notifier    Notifier
	logger      *slog.Logger
}

// NewTerminator accepts a nil notifier for single-instance deployments.
func NewTerminator(revocations *Revocations, notifier Notifier, logger *slog.Logger) *Terminator {
	return &Terminator{
		revocations: revocations,
		notifier:    notifier,
		logger:      logger,
	}
}

// IsEnded reports whether this instance knows the session is over.
func (t *Terminator) IsEnded(sessionID uuid.UUID) bool {
	return t.revocations.IsRevoked(sessionID)
}

// End applies e locally first, so this instance rejects the session even if fan-out fails.
func (t *Terminator) End(ctx context.Context, e Ended) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	t.revocations.Apply(e)

	if t.notifier == nil {
		return
	}
	if err := t.notifier.Notify(ctx, e); err != nil {
		t.logger.WarnContext(ctx, "session end not propagated to peers", "reason", e.Reason, "error", err)
	}
}
