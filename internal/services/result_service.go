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
	appValidator "github.com/charlesng35/collegehub/pkg/validator"
)

// SaveResultInput carries one score pair for a student in a subject.
type SaveResultInput struct {
	StudentID string  `json:"student_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	Test      float64 `json:"test" validate:"gte=0,lte=100"`
	Exam      float64 `json:"exam" validate:"gte=0,lte=100"`
}

// ResultService upserts student results entered by the staff member teaching the subject.
type ResultService struct {
	db     *gorm.DB
	events EventPublisher
}

// NewResultService constructs a ResultService. publisher may be nil.
func NewResultService(db *gorm.DB, publisher EventPublisher) (*ResultService, error) {
	if db == nil {
		return nil, errors.New("result service: db is required")
	}
	return &ResultService{db: db, events: publisher}, nil
}

// Save creates or updates the result for (student, subject). The boolean reports whether a row was created.
func (s *ResultService) Save(ctx context.Context, staff *Principal, input SaveResultInput) (*models.StudentResult, bool, error) {
	ctx = ensureContext(ctx)
	if staff == nil || staff.Role() != models.RoleStaff || staff.Staff == nil {
		return nil, false, apperrors.ErrForbidden
	}
	input.StudentID = strings.TrimSpace(input.StudentID)
	input.SubjectID = strings.TrimSpace(input.SubjectID)
	if err := appValidator.ValidateStruct(&input); err != nil {
		return nil, false, apperrors.NewBadRequest("test and exam must be numbers between 0 and 100")
	}

	var subject models.Subject
	if err := s.db.WithContext(ctx).First(&subject, "id = ?", input.SubjectID).Error; err != nil {
		return nil, false, notFoundOr(err, func(err error) error {
			return fmt.Errorf("result service: load subject: %w", err)
		})
	}
	if subject.StaffID != staff.Staff.ID {
		return nil, false, apperrors.ErrForbidden
	}

	var student models.Student
	if err := s.db.WithContext(ctx).First(&student, "id = ?", input.StudentID).Error; err != nil {
		return nil, false, notFoundOr(err, func(err error) error {
			return fmt.Errorf("result service: load student: %w", err)
		})
	}

	result, created, err := s.upsert(ctx, input)
	if err != nil && isUniqueConstraintError(err) {
		// A concurrent save inserted the row first; apply ours as an update.
		result, created, err = s.upsert(ctx, input)
	}
	if err != nil {
		return nil, false, fmt.Errorf("result service: save result: %w", err)
	}

	if s.events != nil {
		s.events.Publish(ctx, events.ResultSaved, events.ResultSavedPayload{
			ResultID:  result.ID,
			StudentID: result.StudentID,
			SubjectID: result.SubjectID,
			Created:   created,
		})
	}
	return result, created, nil
}

func (s *ResultService) upsert(ctx context.Context, input SaveResultInput) (*models.StudentResult, bool, error) {
	var (
		result  models.StudentResult
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("student_id = ? AND subject_id = ?", input.StudentID, input.SubjectID).First(&result).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			result = models.StudentResult{
				StudentID: input.StudentID,
				SubjectID: input.SubjectID,
				Test:      input.Test,
				Exam:      input.Exam,
			}
			created = true
			return tx.Create(&result).Error
		case err != nil:
			return err
		}
		result.Test = input.Test
		result.Exam = input.Exam
		return tx.Model(&result).Updates(map[string]any{"test": input.Test, "exam": input.Exam}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

// ListForStudent returns every result recorded for a student.
func (s *ResultService) ListForStudent(ctx context.Context, studentID string) ([]models.StudentResult, error) {
	ctx = ensureContext(ctx)
	var results []models.StudentResult
	if err := s.db.WithContext(ctx).
		Preload("Subject").
		Where("student_id = ?", studentID).
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("result service: list results: %w", err)
	}
	return results, nil
}
