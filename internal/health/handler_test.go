package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"institute-service/common/logger"
	"institute-service/common/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func newRouter(h *Handler) http.Handler {
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	return router
}

func TestHealth(t *testing.T) {
	h := NewHandler(metrics.NewMock(), logger.Discard())

	w := httptest.NewRecorder()
	newRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("AllUp", func(t *testing.T) {
		h := NewHandler(metrics.NewMock(), logger.Discard())
		h.Add("postgres", true, func(context.Context) error { return nil })

		w := httptest.NewRecorder()
		newRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, "up", resp.Dependencies["postgres"])
	})

	t.Run("RequiredDown", func(t *testing.T) {
		h := NewHandler(metrics.NewMock(), logger.Discard())
		h.Add("postgres", true, func(context.Context) error { return errors.New("connection refused") })

		w := httptest.NewRecorder()
		newRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "connection refused")

		resp, err := h.GRPC().Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
	})

	t.Run("OptionalDown", func(t *testing.T) {
		h := NewHandler(metrics.NewMock(), logger.Discard())
		h.Add("postgres", true, func(context.Context) error { return nil })
		h.Add("nats", false, func(context.Context) error { return errors.New("disconnected") })

		w := httptest.NewRecorder()
		newRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "disconnected")
	})
}

func TestRun_StopsWithContext(t *testing.T) {
	h := NewHandler(nil, logger.Discard())
	calls := 0
	h.Add("postgres", true, func(context.Context) error { calls++; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.Run(ctx, 0)

	assert.Equal(t, 1, calls)
}
