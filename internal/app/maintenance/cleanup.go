package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/pkg/logger"
	"github.com/charlesng35/collegehub/pkg/metrics"
)

const (
	defaultRetentionDays = 180
	defaultPurgeSpec     = "@daily"
)

// CounterPurger drops rate-limit counters whose window has closed.
type CounterPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Cleaner runs the notification retention job on a cron schedule.
// Only read notifications are ever removed; unread entries stay until someone reads them.
type Cleaner struct {
	db        *gorm.DB
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int
	schedule  string
	counters  CounterPurger

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetentionDays sets how long read notifications are kept. Zero disables purging.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days >= 0 {
			cleaner.retention = days
		}
	}
}

// WithSchedule overrides the cron specification for the purge job.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// WithCounterPurger adds expired rate-limit counters to the purge job.
func WithCounterPurger(p CounterPurger) Option {
	return func(cleaner *Cleaner) {
		cleaner.counters = p
	}
}

// NewCleaner constructs a Cleaner with the default retention and schedule.
func NewCleaner(db *gorm.DB, opts ...Option) (*Cleaner, error) {
	if db == nil {
		return nil, errors.New("maintenance: db is required")
	}

	cleaner := &Cleaner{
		db:        db,
		now:       time.Now,
		retention: defaultRetentionDays,
		schedule:  defaultPurgeSpec,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner, nil
}

// Start registers the purge job and launches the scheduler.
// A zero retention with no counter store leaves the scheduler idle.
func (c *Cleaner) Start() error {
	if c.retention == 0 {
		c.log.Info("notification retention disabled")
		if c.counters == nil {
			return nil
		}
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if _, err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("notification purge failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", c.schedule, err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce purges expired read notifications and stale rate counters immediately.
// It returns how many notifications went.
func (c *Cleaner) RunOnce(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		purged int64
		errs   error
	)

	if c.retention > 0 {
		cutoff := c.now().UTC().AddDate(0, 0, -c.retention)
		n, err := PurgeReadNotifications(ctx, c.db, cutoff)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if n > 0 {
			purged = n
			metrics.NotificationsPurged.Add(float64(n))
			c.log.Info("purged read notifications", zap.Int64("count", n), zap.Time("cutoff", cutoff))
		}
	}

	if c.counters != nil {
		n, err := c.counters.PurgeExpired(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if n > 0 {
			c.log.Debug("purged rate counters", zap.Int64("count", n))
		}
	}

	c.mu.Lock()
	c.lastRun, c.lastErr = c.now(), errs
	c.mu.Unlock()

	return purged, errs
}

// LastRun reports when RunOnce last finished and the error it returned.
func (c *Cleaner) LastRun() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRun, c.lastErr
}

// PurgeReadNotifications deletes read notifications created before cutoff.
func PurgeReadNotifications(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("purge notifications: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}
