package checks

import (
	"context"
	"time"

	"github.com/charlesng35/collegehub/internal/monitoring"
)

const defaultMaintenanceMaxAge = 48 * time.Hour

// JobReporter exposes the outcome of the most recent background run.
type JobReporter interface {
	LastRun() (at time.Time, err error)
}

// Maintenance reports whether the retention job last succeeded within maxAge.
func Maintenance(job JobReporter, maxAge time.Duration) monitoring.Check {
	maxAge = chooseTimeout(maxAge, defaultMaintenanceMaxAge)

	return monitoring.NewCheck("maintenance", func(context.Context) monitoring.ProbeResult {
		if job == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "no maintenance jobs registered"}
		}

		at, err := job.LastRun()
		switch {
		case at.IsZero():
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "pending first run"}
		case err != nil:
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: err.Error()}
		case time.Since(at) > maxAge:
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: "stale run " + at.UTC().Format(time.RFC3339),
			}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	})
}
