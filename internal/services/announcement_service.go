package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/events"
	"github.com/charlesng35/collegehub/internal/models"
	apperrors "github.com/charlesng35/collegehub/pkg/errors"
)

// AnnouncementInput targets either explicit accounts or every active account of a role.
type AnnouncementInput struct {
	RecipientIDs []string
	Audience     models.Role
	Title        string
	Message      string
}

// AnnouncementService lets admins send notices to students and staff.
type AnnouncementService struct {
	db     *gorm.DB
	events EventPublisher
}

// NewAnnouncementService constructs an AnnouncementService. publisher may be nil.
func NewAnnouncementService(db *gorm.DB, publisher EventPublisher) (*AnnouncementService, error) {
	if db == nil {
		return nil, errors.New("announcement service: db is required")
	}
	return &AnnouncementService{db: db, events: publisher}, nil
}

// Send resolves the recipients and publishes the announcement. It returns the number of recipients.
func (s *AnnouncementService) Send(ctx context.Context, admin *Principal, input AnnouncementInput) (int, error) {
	ctx = ensureContext(ctx)
	if admin == nil || admin.Role() != models.RoleAdmin {
		return 0, apperrors.ErrForbidden
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return 0, apperrors.NewBadRequest("message is required")
	}

	query := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("is_active = ? AND role IN ?", true, []models.Role{models.RoleStudent, models.RoleStaff})

	ids := normaliseIDs(input.RecipientIDs)
	switch {
	case len(ids) > 0:
		query = query.Where("id IN ?", ids)
	case input.Audience == models.RoleStudent || input.Audience == models.RoleStaff:
		query = query.Where("role = ?", input.Audience)
	default:
		return 0, apperrors.NewBadRequest("recipients or an audience of students or staff are required")
	}

	var recipients []string
	if err := query.Pluck("id", &recipients).Error; err != nil {
		return 0, fmt.Errorf("announcement service: resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		return 0, apperrors.NewBadRequest("no matching recipients")
	}

	if s.events != nil {
		s.events.Publish(ctx, events.AnnouncementSent, events.Announcement{
			SenderID:   admin.ID(),
			Recipients: recipients,
			Title:      strings.TrimSpace(input.Title),
			Message:    message,
		})
	}
	return len(recipients), nil
}
