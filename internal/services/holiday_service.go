package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/events"
	"github.com/charlesng35/collegehub/internal/models"
	apperrors "github.com/charlesng35/collegehub/pkg/errors"
)

// HolidayService manages the college holiday calendar.
type HolidayService struct {
	db     *gorm.DB
	events EventPublisher
}

// NewHolidayService constructs a HolidayService. publisher may be nil.
func NewHolidayService(db *gorm.DB, publisher EventPublisher) (*HolidayService, error) {
	if db == nil {
		return nil, errors.New("holiday service: db is required")
	}
	return &HolidayService{db: db, events: publisher}, nil
}

// Create adds a holiday. Only one holiday may exist per date.
func (s *HolidayService) Create(ctx context.Context, name string, date time.Time) (*models.Holiday, error) {
	ctx = ensureContext(ctx)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequest("holiday name is required")
	}
	if date.IsZero() {
		return nil, apperrors.NewBadRequest("holiday date is required")
	}

	holiday := &models.Holiday{Name: name, Date: datatypes.Date(date)}
	if err := s.db.WithContext(ctx).Create(holiday).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrHolidayExists
		}
		return nil, fmt.Errorf("holiday service: create holiday: %w", err)
	}

	s.publish(ctx, events.HolidayCreated, holiday)
	return holiday, nil
}

// Delete removes a holiday. The broadcast notice from its creation is left untouched.
func (s *HolidayService) Delete(ctx context.Context, holidayID string) error {
	ctx = ensureContext(ctx)
	var holiday models.Holiday
	if err := s.db.WithContext(ctx).First(&holiday, "id = ?", strings.TrimSpace(holidayID)).Error; err != nil {
		return notFoundOr(err, func(err error) error {
			return fmt.Errorf("holiday service: load holiday: %w", err)
		})
	}

	result := s.db.WithContext(ctx).Delete(&holiday)
	if result.Error != nil {
		return fmt.Errorf("holiday service: delete holiday: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	s.publish(ctx, events.HolidayDeleted, &holiday)
	return nil
}

// List returns holidays in calendar order.
func (s *HolidayService) List(ctx context.Context) ([]models.Holiday, error) {
	ctx = ensureContext(ctx)
	var holidays []models.Holiday
	if err := s.db.WithContext(ctx).Order("date ASC").Find(&holidays).Error; err != nil {
		return nil, fmt.Errorf("holiday service: list holidays: %w", err)
	}
	return holidays, nil
}

func (s *HolidayService) publish(ctx context.Context, name string, holiday *models.Holiday) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, name, events.HolidayChanged{
		HolidayID: holiday.ID,
		Name:      holiday.Name,
		Date:      time.Time(holiday.Date),
	})
}
