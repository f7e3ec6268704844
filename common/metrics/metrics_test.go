package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/grpc"
)

func TestNewMock_RecordersAreNoOps(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.Database.RecordQuery(ctx, "select", "students", time.Millisecond, errors.New("boom"))
		m.Database.RecordRows(ctx, "students", 3)
		m.Messaging.RecordPublish(ctx, "auth.session.ended", time.Millisecond, nil)
		m.Messaging.RecordConsume(ctx, "auth.session.ended", time.Millisecond, nil)
		m.Health.RecordDependencyCheck(ctx, "postgres", time.Millisecond, nil)
	})
	assert.Nil(t, m.Meter())
	assert.Zero(t, m.Runtime.Uptime())
}

func TestHealthMetrics_TracksRegisteredDependencies(t *testing.T) {
	hm, err := NewHealthMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, hm.RegisterDependencies(ctx, noop.NewMeterProvider().Meter("test"), []string{"postgres", "nats"}))

	hm.RecordDependencyCheck(ctx, "postgres", time.Millisecond, nil)
	hm.RecordDependencyCheck(ctx, "nats", time.Millisecond, errors.New("disconnected"))
	hm.RecordDependencyCheck(ctx, "kafka", time.Millisecond, nil)

	assert.True(t, hm.IsUp("postgres"))
	assert.False(t, hm.IsUp("nats"))
	assert.False(t, hm.IsUp("kafka"), "unregistered dependencies are not tracked")
}

func TestUnaryServerInterceptor_PassesThrough(t *testing.T) {
	gm, err := NewGrpcMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	interceptor := gm.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := interceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestSplitMethodName(t *testing.T) {
	service, method := splitMethodName("/grpc.health.v1.Health/Check")
	assert.Equal(t, "grpc.health.v1.Health", service)
	assert.Equal(t, "Check", method)

	service, method = splitMethodName("Check")
	assert.Equal(t, "unknown", service)
	assert.Equal(t, "Check", method)
}
