package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the business counters of the institute service.
type Metrics struct {
	accountsRegistered metric.Int64Counter
	signIns            metric.Int64Counter
	sessionsEnded      metric.Int64Counter
	recoveryCodesSent  metric.Int64Counter
	passwordsReset     metric.Int64Counter
	recordsWritten     metric.Int64Counter
	limitRejections    metric.Int64Counter
	publicSearches     metric.Int64Counter
	feePaymentAmount   metric.Float64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	if m.accountsRegistered, err = meter.Int64Counter(
		"institute.accounts.registered",
		metric.WithDescription("Total number of institute accounts registered"),
		metric.WithUnit("{account}"),
	); err != nil {
		return nil, err
	}

	if m.signIns, err = meter.Int64Counter(
		"institute.auth.sign_ins",
		metric.WithDescription("Sign-in attempts by outcome"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, err
	}

	if m.sessionsEnded, err = meter.Int64Counter(
		"institute.auth.sessions_ended",
		metric.WithDescription("Sessions terminated by sign-out or password reset"),
		metric.WithUnit("{session}"),
	); err != nil {
		return nil, err
	}

	if m.recoveryCodesSent, err = meter.Int64Counter(
		"institute.recovery.codes_sent",
		metric.WithDescription("One-time recovery codes sent"),
		metric.WithUnit("{code}"),
	); err != nil {
		return nil, err
	}

	if m.passwordsReset, err = meter.Int64Counter(
		"institute.recovery.passwords_reset",
		metric.WithDescription("Passwords changed through recovery"),
		metric.WithUnit("{reset}"),
	); err != nil {
		return nil, err
	}

	if m.recordsWritten, err = meter.Int64Counter(
		"institute.records.written",
		metric.WithDescription("Entity writes by entity and operation"),
		metric.WithUnit("{write}"),
	); err != nil {
		return nil, err
	}

	if m.limitRejections, err = meter.Int64Counter(
		"institute.records.limit_rejections",
		metric.WithDescription("Creates rejected because the per-owner cap was reached"),
		metric.WithUnit("{rejection}"),
	); err != nil {
		return nil, err
	}

	if m.publicSearches, err = meter.Int64Counter(
		"institute.students.public_searches",
		metric.WithDescription("Public student lookups by outcome"),
		metric.WithUnit("{search}"),
	); err != nil {
		return nil, err
	}

	if m.feePaymentAmount, err = meter.Float64Counter(
		"institute.fees.collected",
		metric.WithDescription("Sum of recorded fee payments"),
		metric.WithUnit("{currency}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordAccountRegistered(ctx context.Context) {
	if m != nil && m.accountsRegistered != nil {
		m.accountsRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordSignIn(ctx context.Context, success bool) {
	if m != nil && m.signIns != nil {
		m.signIns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

func (m *Metrics) RecordSessionEnded(ctx context.Context, reason string) {
	if m != nil && m.sessionsEnded != nil {
		m.sessionsEnded.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *Metrics) RecordRecoveryCodeSent(ctx context.Context) {
	if m != nil && m.recoveryCodesSent != nil {
		m.recoveryCodesSent.Add(ctx, 1)
	}
}

func (m *Metrics) RecordPasswordReset(ctx context.Context) {
	if m != nil && m.passwordsReset != nil {
		m.passwordsReset.Add(ctx, 1)
	}
}

func (m *Metrics) RecordWrite(ctx context.Context, entity, op string) {
	if m != nil && m.recordsWritten != nil {
		m.recordsWritten.Add(ctx, 1, metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("operation", op),
		))
	}
}

func (m *Metrics) RecordLimitRejection(ctx context.Context, entity string) {
	if m != nil && m.limitRejections != nil {
		m.limitRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("entity", entity)))
	}
}

func (m *Metrics) RecordPublicSearch(ctx context.Context, found bool) {
	if m != nil && m.publicSearches != nil {
		m.publicSearches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("found", found)))
	}
}

func (m *Metrics) RecordFeePayment(ctx context.Context, amount float64) {
	if m != nil && m.feePaymentAmount != nil {
		m.feePaymentAmount.Add(ctx, amount)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
