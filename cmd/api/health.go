package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// matcherService is the gRPC health service name load balancers probe.
const matcherService = "programmatcher.v1.Matcher"

// healthReporter serves grpc.health.v1 and flips the serving status with the
// reachability of Postgres and Redis.
type healthReporter struct {
	server *health.Server
	pool   *sql.DB
	rdb    *redis.Client
	logger *slog.Logger
}

func newHealthReporter(gs *grpc.Server, pool *sql.DB, rdb *redis.Client, logger *slog.Logger) *healthReporter {
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(matcherService, healthpb.HealthCheckResponse_SERVING)
	return &healthReporter{server: hs, pool: pool, rdb: rdb, logger: logger}
}

// Watch probes dependencies every interval until ctx is done.
func (h *healthReporter) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ok := h.probe(ctx)
		if ok == serving {
			continue
		}
		serving = ok
		status := healthpb.HealthCheckResponse_SERVING
		if !ok {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		h.server.SetServingStatus("", status)
		h.server.SetServingStatus(matcherService, status)
		h.logger.Info("health: status changed", "status", status.String())
	}
}

func (h *healthReporter) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.pool.PingContext(ctx); err != nil {
		h.logger.Warn("health: postgres unreachable", "error", err)
		return false
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		h.logger.Warn("health: redis unreachable", "error", err)
		return false
	}
	return true
}

// Shutdown reports NOT_SERVING to every watcher ahead of the drain.
func (h *healthReporter) Shutdown() {
	h.server.Shutdown()
}
