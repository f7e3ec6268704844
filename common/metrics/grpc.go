package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

type GrpcMetrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	errorsTotal     metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

func NewGrpcMetrics(meter metric.Meter) (*GrpcMetrics, error) {
	gm := &GrpcMetrics{}

	var err error

	if gm.requestDuration, err = meter.Float64Histogram(
		"grpc.server.request_duration",
		metric.WithDescription("gRPC request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if gm.requestsTotal, err = meter.Int64Counter(
		"grpc.server.requests_total",
		metric.WithDescription("Total number of gRPC requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if gm.errorsTotal, err = meter.Int64Counter(
		"grpc.server.errors_total",
		metric.WithDescription("Total number of gRPC errors"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if gm.activeRequests, err = meter.Int64UpDownCounter(
		"grpc.server.active_requests",
		metric.WithDescription("Number of in-flight gRPC requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	return gm, nil
}

// UnaryServerInterceptor records latency, traffic, errors and saturation per method.
func (gm *GrpcMetrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if gm == nil || gm.requestDuration == nil {
			return handler(ctx, req)
		}

		service, method := splitMethodName(info.FullMethod)
		base := []attribute.KeyValue{
			attribute.String("grpc_service", service),
			attribute.String("grpc_method", method),
		}

		gm.activeRequests.Add(ctx, 1, metric.WithAttributes(base...))
		defer gm.activeRequests.Add(ctx, -1, metric.WithAttributes(base...))

		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := metric.WithAttributes(append(base, attribute.String("grpc_code", status.Code(err).String()))...)
		gm.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		gm.requestsTotal.Add(ctx, 1, attrs)
		if err != nil {
			gm.errorsTotal.Add(ctx, 1, attrs)
		}
		return resp, err
	}
}

// splitMethodName splits "/package.Service/Method" into service and method
func splitMethodName(fullMethod string) (string, string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[:i], fullMethod[i+1:]
	}
	return "unknown", fullMethod
}
