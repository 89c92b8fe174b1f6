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

// FeedbackService stores feedback sent to the administration and admin replies.
type FeedbackService struct {
	db     *gorm.DB
	events EventPublisher
}

// NewFeedbackService constructs a FeedbackService. publisher may be nil.
func NewFeedbackService(db *gorm.DB, publisher EventPublisher) (*FeedbackService, error) {
	if db == nil {
		return nil, errors.New("feedback service: db is required")
	}
	return &FeedbackService{db: db, events: publisher}, nil
}

// Submit stores feedback from a student or staff member.
func (s *FeedbackService) Submit(ctx context.Context, author *Principal, body string) (*models.Feedback, error) {
	ctx = ensureContext(ctx)
	if author == nil {
		return nil, apperrors.ErrUnauthorized
	}

	var event string
	switch author.Role() {
	case models.RoleStudent:
		event = events.StudentFeedbackCreated
	case models.RoleStaff:
		event = events.StaffFeedbackCreated
	default:
		return nil, apperrors.ErrForbidden
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewBadRequest("feedback is required")
	}

	feedback := &models.Feedback{
		AccountID: author.ID(),
		Role:      author.Role(),
		Body:      body,
	}
	if err := s.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, fmt.Errorf("feedback service: create feedback: %w", err)
	}

	if s.events != nil {
		s.events.Publish(ctx, event, events.FeedbackCreated{
			FeedbackID: feedback.ID,
			AccountID:  feedback.AccountID,
			Body:       feedback.Body,
		})
	}
	return feedback, nil
}

// Reply stores the admin answer on a feedback entry.
func (s *FeedbackService) Reply(ctx context.Context, admin *Principal, feedbackID, reply string) (*models.Feedback, error) {
	ctx = ensureContext(ctx)
	if admin == nil || admin.Role() != models.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, apperrors.NewBadRequest("reply is required")
	}

	var feedback models.Feedback
	if err := s.db.WithContext(ctx).First(&feedback, "id = ?", strings.TrimSpace(feedbackID)).Error; err != nil {
		return nil, notFoundOr(err, func(err error) error {
			return fmt.Errorf("feedback service: load feedback: %w", err)
		})
	}
	if err := s.db.WithContext(ctx).Model(&feedback).Update("reply", reply).Error; err != nil {
		return nil, fmt.Errorf("feedback service: save reply: %w", err)
	}
	feedback.Reply = reply

	if s.events != nil {
		s.events.Publish(ctx, events.FeedbackReplied, events.FeedbackReply{
			FeedbackID: feedback.ID,
			AccountID:  feedback.AccountID,
			RepliedBy:  admin.ID(),
			Reply:      reply,
		})
	}
	return &feedback, nil
}

// ListForAccount returns the feedback written by accountID, newest first.
func (s *FeedbackService) ListForAccount(ctx context.Context, accountID string) ([]models.Feedback, error) {
	ctx = ensureContext(ctx)
	var items []models.Feedback
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("feedback service: list feedback: %w", err)
	}
	return items, nil
}

// ListByRole returns all feedback from accounts of the given role, newest first.
func (s *FeedbackService) ListByRole(ctx context.Context, role models.Role) ([]models.Feedback, error) {
	ctx = ensureContext(ctx)
	var items []models.Feedback
	if err := s.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("feedback service: list feedback: %w", err)
	}
	return items, nil
}
