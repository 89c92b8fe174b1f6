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

// EventPublisher announces committed domain writes. events.Dispatcher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, name string, payload any)
}

// ApplyLeaveInput describes a leave application.
type ApplyLeaveInput struct {
	Date    time.Time
	EndDate *time.Time
	Message string
}

// LeaveService records leave requests from students and staff and admin decisions on them.
type LeaveService struct {
	db     *gorm.DB
	events EventPublisher
}

// NewLeaveService constructs a LeaveService. publisher may be nil.
func NewLeaveService(db *gorm.DB, publisher EventPublisher) (*LeaveService, error) {
	if db == nil {
		return nil, errors.New("leave service: db is required")
	}
	return &LeaveService{db: db, events: publisher}, nil
}

// Apply stores a leave request for a student or staff member and publishes the matching event.
func (s *LeaveService) Apply(ctx context.Context, applicant *Principal, input ApplyLeaveInput) (*models.LeaveRequest, error) {
	ctx = ensureContext(ctx)
	if applicant == nil {
		return nil, apperrors.ErrUnauthorized
	}

	var event string
	switch applicant.Role() {
	case models.RoleStudent:
		event = events.StudentLeaveCreated
	case models.RoleStaff:
		event = events.StaffLeaveCreated
	default:
		return nil, apperrors.ErrForbidden
	}

	if input.Date.IsZero() {
		return nil, apperrors.NewBadRequest("leave date is required")
	}
	if input.EndDate != nil && input.EndDate.Before(input.Date) {
		return nil, apperrors.NewBadRequest("end date must not be before the start date")
	}

	leave := &models.LeaveRequest{
		AccountID: applicant.ID(),
		Role:      applicant.Role(),
		Date:      datatypes.Date(input.Date),
		Message:   strings.TrimSpace(input.Message),
		Status:    models.LeavePending,
	}
	if input.EndDate != nil {
		end := datatypes.Date(*input.EndDate)
		leave.EndDate = &end
	}

	if err := s.db.WithContext(ctx).Create(leave).Error; err != nil {
		return nil, fmt.Errorf("leave service: create leave request: %w", err)
	}

	s.publish(ctx, event, events.LeaveCreated{
		LeaveID:   leave.ID,
		AccountID: leave.AccountID,
		Date:      input.Date,
	})
	return leave, nil
}

// Decide approves or rejects a pending or previously decided leave request.
func (s *LeaveService) Decide(ctx context.Context, admin *Principal, leaveID string, approved bool) (*models.LeaveRequest, error) {
	ctx = ensureContext(ctx)
	if admin == nil || admin.Role() != models.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	var leave models.LeaveRequest
	if err := s.db.WithContext(ctx).First(&leave, "id = ?", strings.TrimSpace(leaveID)).Error; err != nil {
		return nil, notFoundOr(err, func(err error) error {
			return fmt.Errorf("leave service: load leave request: %w", err)
		})
	}

	status := models.LeaveRejected
	if approved {
		status = models.LeaveApproved
	}
	if err := s.db.WithContext(ctx).Model(&leave).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("leave service: update status: %w", err)
	}
	leave.Status = status

	s.publish(ctx, events.LeaveDecided, events.LeaveDecision{
		LeaveID:   leave.ID,
		AccountID: leave.AccountID,
		DecidedBy: admin.ID(),
		Approved:  approved,
		Date:      time.Time(leave.Date),
	})
	return &leave, nil
}

// ListForAccount returns the caller's leave history, newest first.
func (s *LeaveService) ListForAccount(ctx context.Context, accountID string) ([]models.LeaveRequest, error) {
	ctx = ensureContext(ctx)
	var leaves []models.LeaveRequest
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&leaves).Error; err != nil {
		return nil, fmt.Errorf("leave service: list leave requests: %w", err)
	}
	return leaves, nil
}

// ListByRole returns every leave request filed by accounts of the given role, newest first.
func (s *LeaveService) ListByRole(ctx context.Context, role models.Role) ([]models.LeaveRequest, error) {
	ctx = ensureContext(ctx)
	var leaves []models.LeaveRequest
	if err := s.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&leaves).Error; err != nil {
		return nil, fmt.Errorf("leave service: list leave requests: %w", err)
	}
	return leaves, nil
}

func (s *LeaveService) publish(ctx context.Context, name string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, name, payload)
}
