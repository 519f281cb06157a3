package grpc

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/logging"
	"github.com/dmitrijs2005/secretkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/repomanager"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	defaultCheckInterval = 15 * time.Second
	checkTimeout         = 5 * time.Second
)

// HealthMonitor polls backend health checks and publishes the result to a
// health server and to metrics.
type HealthMonitor struct {
	health   *health.Server
	checks   map[string]repomanager.Healthcheck
	names    []string
	metrics  metrics.MetricsCollector
	logger   logging.Logger
	interval time.Duration
}

func NewHealthMonitor(hs *health.Server, checks map[string]repomanager.Healthcheck, m metrics.MetricsCollector, l logging.Logger, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = defaultCheckInterval
	}

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return &HealthMonitor{
		health:   hs,
		checks:   checks,
		names:    names,
		metrics:  m,
		logger:   l,
		interval: interval,
	}
}

// CheckOnce probes every backend and returns true when all of them answered.
// With no backends configured the service is always serving.
func (h *HealthMonitor) CheckOnce(ctx context.Context) bool {
	healthy := true

	for _, name := range h.names {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := h.checks[name](cctx)
		cancel()

		h.metrics.SetBackendUp(name, err == nil)
		if err != nil {
			healthy = false
			h.logger.Warn(ctx, "backend healthcheck failed", "backend", name, "error", err)
		}
	}

	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)

	return healthy
}

// Run calls CheckOnce every interval until ctx is done.
func (h *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.CheckOnce(ctx)
		}
	}
}
