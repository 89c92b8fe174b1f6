package checks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/collegehub/internal/database/testutil"
	"github.com/charlesng35/collegehub/internal/monitoring"
)

func TestDatabaseCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	result := Database(db, time.Second).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	result = Database(nil, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
}

func TestRedisCheck(t *testing.T) {
	result := Redis(nil, false, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	result = Redis(nil, true, 0).Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, result.Status)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	result = Redis(client, true, 200*time.Millisecond).Run(context.Background())
	require.Equal(t, monitoring.StatusDegraded, result.Status)
	require.NotEmpty(t, result.Details)
}

type fakeJob struct {
	at  time.Time
	err error
}

func (f fakeJob) LastRun() (time.Time, error) { return f.at, f.err }

func TestMaintenanceCheck(t *testing.T) {
	ctx := context.Background()

	require.Equal(t, monitoring.StatusUp, Maintenance(nil, 0).Run(ctx).Status)
	require.Equal(t, "pending first run", Maintenance(fakeJob{}, 0).Run(ctx).Details)
	require.Equal(t, monitoring.StatusUp, Maintenance(fakeJob{at: time.Now()}, 0).Run(ctx).Status)

	failed := Maintenance(fakeJob{at: time.Now(), err: errors.New("locked")}, 0).Run(ctx)
	require.Equal(t, monitoring.StatusDegraded, failed.Status)
	require.Equal(t, "locked", failed.Details)

	stale := Maintenance(fakeJob{at: time.Now().Add(-time.Hour)}, time.Minute).Run(ctx)
	require.Equal(t, monitoring.StatusDegraded, stale.Status)
}
