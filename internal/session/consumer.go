package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"institute-service/common/metrics"

	"github.com/nats-io/nats.go"
)

// Consumer applies Ended events published by any instance to the local revocation set.
type Consumer struct {
	conn        *nats.Conn
	sub         *nats.Subscription
	subject     string
	revocations *Revocations
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewConsumer(conn *nats.Conn, subject string, revocations *Revocations, logger *slog.Logger, m *metrics.Metrics) *Consumer {
	return &Consumer{
		conn:        conn,
		subject:     subject,
		revocations: revocations,
		logger:      logger,
		metrics:     m,
	}
}

// Start subscribes and blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.conn.Subscribe(c.subject, func(msg *nats.Msg) {
		start := time.Now()
		var e Ended
		err := json.Unmarshal(msg.Data, &e)
		if err == nil {
			c.revocations.Apply(e)
		}
		c.metrics.Messaging.RecordConsume(context.Background(), msg.Subject, time.Since(start), err)

		if err != nil {
			c.logger.Error("failed to decode session end", "subject", msg.Subject, "error", err)
			return
		}
		c.logger.Debug("session end applied", "reason", e.Reason, "account_id", e.AccountID)
	})
	if err != nil {
		return err
	}

	c.sub = sub
	c.metrics.Messaging.RecordConnectionChange(ctx, 1)
	c.logger.Info("session consumer started", "subject", c.subject)

	<-ctx.Done()
	return ctx.Err()
}

func (c *Consumer) Close() error {
	if c.sub != nil {
		c.metrics.Messaging.RecordConnectionChange(context.Background(), -1)
		return c.sub.Unsubscribe()
	}
	return nil
}

// HealthCheck verifies the NATS connection is usable
func (c *Consumer) HealthCheck() error {
	if c.conn == nil {
		return nats.ErrConnectionClosed
	}
	if !c.conn.IsConnected() {
		return nats.ErrDisconnected
	}
	return nil
}
