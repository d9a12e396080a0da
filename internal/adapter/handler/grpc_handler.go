package handler

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthReporter serves the standard gRPC health service. The overall status
// ("") is SERVING only while every check passes; each check is also exposed
// under its own service name.
type HealthReporter struct {
	server   *health.Server
	checks   map[string]Pinger
	interval time.Duration
}

func NewHealthReporter(checks map[string]Pinger, interval time.Duration) *HealthReporter {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	h := &HealthReporter{
		server:   health.NewServer(),
		checks:   checks,
		interval: interval,
	}
	h.server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Run refreshes the statuses until ctx is done and then marks everything
// NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return nil
		case <-ticker.C:
			h.refresh(ctx)
		}
	}
}

func (h *HealthReporter) refresh(ctx context.Context) {
	failures := checkAll(ctx, h.checks)

	for name := range h.checks {
		status := healthpb.HealthCheckResponse_SERVING
		if msg, failed := failures[name]; failed {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			log.Printf("health: %s unavailable: %s", name, msg)
		}
		h.server.SetServingStatus(name, status)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if len(failures) > 0 {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", overall)
}
