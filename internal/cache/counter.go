package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/collegehub/internal/models"
)

// CounterStore keeps fixed-window counters in the primary database.
// It lets several instances share rate limits when no Redis is configured.
type CounterStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCounterStore constructs a database-backed counter store.
func NewCounterStore(db *gorm.DB) (*CounterStore, error) {
	if db == nil {
		return nil, errors.New("cache: db is required")
	}
	return &CounterStore{db: db, now: time.Now}, nil
}

// Increment bumps the counter for key and returns the count in the current window and its remaining lifetime.
func (s *CounterStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if window <= 0 {
		window = time.Minute
	}

	count, expiry, err := s.increment(ctx, key, window)
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another instance created the row between our read and insert.
		count, expiry, err = s.increment(ctx, key, window)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("cache: increment %s: %w", key, err)
	}
	return int(count), expiry.Sub(s.now()), nil
}

func (s *CounterStore) increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	var (
		count  int64
		expiry time.Time
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now().UTC()

		var entry models.RateCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&entry, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.RateCounter{Key: key, Count: 1, ExpiresAt: now.Add(window)}
			count, expiry = entry.Count, entry.ExpiresAt
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		if entry.ExpiresAt.Before(now) {
			entry.Count = 1
			entry.ExpiresAt = now.Add(window)
		} else {
			entry.Count++
		}
		count, expiry = entry.Count, entry.ExpiresAt
		return tx.Model(&entry).Updates(map[string]any{
			"count":      entry.Count,
			"expires_at": entry.ExpiresAt,
		}).Error
	})
	return count, expiry, err
}

// PurgeExpired removes counters whose window has closed.
func (s *CounterStore) PurgeExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now().UTC()).
		Delete(&models.RateCounter{})
	if result.Error != nil {
		return 0, fmt.Errorf("cache: purge counters: %w", result.Error)
	}
	return result.RowsAffected, nil
}
