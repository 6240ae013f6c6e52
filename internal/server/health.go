package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the gRPC health service name reported next to the overall "" status.
const HealthServiceName = "orders.intake"

// HealthService publishes storage reachability over the standard gRPC health protocol.
type HealthService struct {
	srv      *health.Server
	ping     func(ctx context.Context) error
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewHealthService(ping func(ctx context.Context) error, interval time.Duration, logger *slog.Logger) *HealthService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &HealthService{
		srv:      health.NewServer(),
		ping:     ping,
		interval: interval,
		timeout:  3 * time.Second,
		logger:   logger,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service to s.
func (h *HealthService) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
}

// Check pings storage once and updates the published status.
func (h *HealthService) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		h.logger.Warn("health.check.failed", "error", err)
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
}

// Run checks on every interval until ctx is done, then marks the service as shutting down.
func (h *HealthService) Run(ctx context.Context) {
	h.Check(ctx)
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return
		case <-t.C:
			h.Check(ctx)
		}
	}
}

func (h *HealthService) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(HealthServiceName, status)
}
