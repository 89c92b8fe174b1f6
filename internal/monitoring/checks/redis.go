package checks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/charlesng35/collegehub/internal/monitoring"
)

const defaultRedisTimeout = 2 * time.Second

// Redis returns a readiness probe for the notification relay.
// An unreachable relay is degraded: local delivery keeps working without it.
func Redis(client redis.UniversalClient, enabled bool, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if !enabled {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "relay disabled"}
		}
		if client == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "redis unavailable"}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultRedisTimeout))
		defer cancel()

		result := monitoring.ResultFromError("redis", client.Ping(probeCtx).Err(), time.Since(start))
		if result.Status == monitoring.StatusDown {
			result.Status = monitoring.StatusDegraded
		}
		return result
	})
}
