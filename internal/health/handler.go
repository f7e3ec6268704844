// Package health exposes liveness and readiness probes over HTTP and gRPC.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"institute-service/common/httputil"
	"institute-service/common/metrics"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const checkTimeout = 3 * time.Second

// Check pings one dependency.
type Check func(ctx context.Context) error

type Response struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type Handler struct {
	mu       sync.RWMutex
	checks   map[string]Check
	required map[string]bool
	grpc     *health.Server
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewHandler(m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		checks:   make(map[string]Check),
		required: make(map[string]bool),
		grpc:     health.NewServer(),
		metrics:  m,
		logger:   logger,
	}
}

// Add registers a dependency. A failing required dependency makes the service not ready.
func (h *Handler) Add(name string, required bool, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
	h.required[name] = required
}

func (h *Handler) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	return names
}

// GRPC is the server to register on the gRPC listener.
func (h *Handler) GRPC() *health.Server {
	return h.grpc
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, Response{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	results, ready := h.CheckAll(ctx)
	resp := Response{Status: "ready", Dependencies: make(map[string]string, len(results))}
	for name, err := range results {
		if err != nil {
			resp.Dependencies[name] = err.Error()
			continue
		}
		resp.Dependencies[name] = "up"
	}
	if !ready {
		resp.Status = "not ready"
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// CheckAll runs every check, records it and updates the gRPC serving status.
func (h *Handler) CheckAll(ctx context.Context) (map[string]error, bool) {
	h.mu.RLock()
	checks := make(map[string]Check, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	results := make(map[string]error, len(checks))
	ready := true
	for name, check := range checks {
		start := time.Now()
		err := check(ctx)
		if h.metrics != nil {
			h.metrics.Health.RecordDependencyCheck(ctx, name, time.Since(start), err)
		}
		results[name] = err
		if err != nil {
			h.logger.WarnContext(ctx, "dependency check failed", "dependency", name, "error", err)
			h.mu.RLock()
			if h.required[name] {
				ready = false
			}
			h.mu.RUnlock()
		}
	}

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !ready {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	h.grpc.SetServingStatus("", status)
	return results, ready
}

// Run checks dependencies every interval until ctx is done.
func (h *Handler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		h.CheckAll(checkCtx)
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown flips every gRPC status to NOT_SERVING.
func (h *Handler) Shutdown() {
	h.grpc.Shutdown()
}
