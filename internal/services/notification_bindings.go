package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/events"
	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/pkg/logger"
)

// NotificationBindings translates committed domain events into dashboard notifications.
type NotificationBindings struct {
	db        *gorm.DB
	notifier  *NotificationService
	directory *AccountDirectory
	log       *zap.Logger
}

// RegisterNotificationBindings attaches one binding per domain event to the dispatcher.
// It must run once during startup; a second call fails with events.ErrDuplicateBinding.
func RegisterNotificationBindings(dispatcher *events.Dispatcher, db *gorm.DB, notifier *NotificationService, directory *AccountDirectory) error {
	if dispatcher == nil || db == nil || notifier == nil || directory == nil {
		return errors.New("notification bindings: dispatcher, db, notifier and directory are required")
	}

	b := &NotificationBindings{
		db:        db,
		notifier:  notifier,
		directory: directory,
		log:       logger.WithModule("notifications"),
	}

	var err error
	err = multierr.Append(err, dispatcher.Subscribe(events.StudentLeaveCreated, "notify-leave", b.onLeaveCreated))
	err = multierr.Append(err, dispatcher.Subscribe(events.StaffLeaveCreated, "notify-leave", b.onLeaveCreated))
	err = multierr.Append(err, dispatcher.Subscribe(events.LeaveDecided, "notify-leave-decision", b.onLeaveDecided))
	err = multierr.Append(err, dispatcher.Subscribe(events.StudentFeedbackCreated, "notify-feedback", b.onFeedbackCreated))
	err = multierr.Append(err, dispatcher.Subscribe(events.StaffFeedbackCreated, "notify-feedback", b.onFeedbackCreated))
	err = multierr.Append(err, dispatcher.Subscribe(events.FeedbackReplied, "notify-feedback-reply", b.onFeedbackReplied))
	err = multierr.Append(err, dispatcher.Subscribe(events.ResultSaved, "notify-result", b.onResultSaved))
	err = multierr.Append(err, dispatcher.Subscribe(events.HolidayCreated, "notify-holiday", b.onHolidayCreated))
	err = multierr.Append(err, dispatcher.Subscribe(events.HolidayDeleted, "notify-holiday", b.onHolidayDeleted))
	err = multierr.Append(err, dispatcher.Subscribe(events.AnnouncementSent, "notify-announcement", b.onAnnouncement))
	return err
}

func (b *NotificationBindings) onLeaveCreated(ctx context.Context, evt events.Event) error {
	payload, ok := evt.Payload.(events.LeaveCreated)
	if !ok {
		return fmt.Errorf("notification bindings: unexpected payload %T for %s", evt.Payload, evt.Name)
	}
	applicant, err := b.directory.Get(ctx, payload.AccountID)
	if err != nil {
		return fmt.Errorf("notification bindings: load applicant: %w", err)
	}

	kind, adminTitle := models.KindLeaveStudent, "New Student Leave Request"
	if evt.Name == events.StaffLeaveCreated {
		kind, adminTitle = models.KindLeaveStaff, "New Staff Leave Request"
	}
	date := formatDate(payload.Date)

	_, _ = b.notifier.Create(ctx, CreateNotificationInput{
		RecipientID: applicant.ID,
		Kind:        kind,
		Title:       "Leave Request Submitted",
		Message:     fmt.Sprintf("Your leave request for %s has been submitted.", date),
		RelatedID:   payload.LeaveID,
	})
	b.notifier.NotifyAdmins(ctx, CreateNotificationInput{
		Kind:      kind,
		Title:     adminTitle,
		Message:   fmt.Sprintf("%s applied for leave on %s.", applicant.FullName(), date),
		SenderID:  applicant.ID,
		RelatedID: payload.LeaveID,
	})
	return nil
}

func (b *NotificationBindings) onLeaveDecided(ctx context.Context, evt events.Event) error {
	payload, ok := evt.Payload.(events.LeaveDecision)
	if !ok {
		return fmt.Errorf("notification bindings: unexpected payload %T for %s", evt.Payload, evt.Name)
	}

	verdict, title := "rejected", "Leave Request Rejected"
	if payload.Approved {
		verdict, title = "approved", "Leave Request Approved"
	}
	_, _ = b.notifier.Create(ctx, CreateNotificationInput{
		RecipientID: payload.AccountID,
		Kind:        models.KindLeaveReply,
		Title:       title,
		Message:     fmt.Sprintf("Your leave request for %s has been %s.", formatDate(payload.Date), verdict),
		SenderID:    payload.DecidedBy,
		RelatedID:   payload.LeaveID,
	})
	return nil
}

func (b *NotificationBindings) onFeedbackCreated(ctx context.Context, evt events.Event) error {
	payload, ok := evt.Payload.(events.FeedbackCreated)
	if !ok {
		return fmt.Errorf("notification bindings: unexpected payload %T for %s", evt.Payload, evt.Name)
	}
	author, err := b.directory.Get(ctx, payload.AccountID)
	if err != nil {
		return fmt.Errorf("notification bindings: load feedback author: %w", err)
	}

	kind, adminTitle := models.KindFeedbackStudent, "New Student Feedback"
	if evt.Name == events.StaffFeedbackCreated {
		kind, adminTitle = models.KindFeedbackStaff, "New Staff Feedback"
	}

	_, _ = b.notifier.Create(ctx, CreateNotificationInput{
		RecipientID: author.ID,
		Kind:        kind,
		Title:       "Feedback Sent",
		Message:     "Your feedback has been sent to the administration.",
		RelatedID:   payload.FeedbackID,
	})
	b.notifier.NotifyAdmins(ctx, CreateNotificationInput{
		Kind:      kind,
		Title:     adminTitle,
		Message:   fmt.Sprintf("%s submitted feedback: %s", author.FullName(), preview(payload.Body)),
		SenderID:  author.ID,
		RelatedID: payload.FeedbackID,
	})
	return nil
}

func (b *NotificationBindings) onFeedbackReplied(ctx context.Context, evt events.Event) error {
	payload, ok := evt.Payload.(events.FeedbackReply)
	if !ok {
		return fmt.Errorf("notification bindings: unexpected payload %T for %s", evt.Payload, evt.Name)
	}

	_, _ = b.notifier.Create(ctx, CreateNotificationInput{
		RecipientID: payload.AccountID,
		Kind:        models.KindFeedbackReply,
		Title:       "Feedback Reply",
		Message:     "Admin replied to your feedback: " + preview(payload.Reply),
		SenderID:    payload.RepliedBy,
		RelatedID:   payload.FeedbackID,
	})
	return nil
}

// onResultSaved notifies only on updates: the student and the subject's staff member each get one notice.
func (b *NotificationBindings) onResultSaved(ctx context.Context, evt events.Event) error {
	payload, ok := evt.Payload.(events.ResultSavedPayload)
	if !ok {
		return fmt.Errorf("notification bindings: unexpected payload %T for %s", evt.Payload, evt.Name)
	}
	if payload.Created {
		return nil
	}

	var subject models.Subject
	if err := b.db.WithContext(ctx).Preload("Staff").First(&subject, "id = ?", payload.SubjectID).Error; err != nil {
		return fmt.Errorf("notification bindings: load subject: %w", err)
	}
	var student models.Student
	if err := b.db.WithContext(ctx).Preload("Account").First(&student, "id = ?", payload.StudentID).Error; err != nil {
		return fmt.Errorf("notification bindings: load student: %w", err)
	}

	var staffAccountID string
	if subject.Staff != nil {
		staffAccountID = subject.Staff.AccountID
	}

	_, _ = b.notifier.Create(ctx, CreateNotificationInput{
		RecipientID: student.AccountID,
		Kind:        models.KindResultUpdate,
		Title:       "Result Updated",
		Message:     fmt.Sprintf("Your result for %s has been updated.", subject.Name),
		SenderID:    staffAccountID,
		RelatedID:   payload.ResultID,
	})

	if staffAccountID == "" {
		return nil
	}
	studentName := ""
	if student.Account != nil {
		studentName = student.Account.FullName()
	}
	_, _ = b.notifier.Create(ctx, CreateNotificationInput{
		RecipientID: staffAccountID,
		Kind:        models.KindAdminNotification,
		Title:       "Result Updated",
		Message:     fmt.Sprintf("Result for %s in %s has been saved.", studentName, subject.Name),
		SenderID:    staffAccountID,
		RelatedID:   payload.ResultID,
	})
	return nil
}

func (b *NotificationBindings) onHolidayCreated(ctx context.Context, evt events.Event) error {
	payload, ok := evt.Payload.(events.HolidayChanged)
	if !ok {
		return fmt.Errorf("notification bindings: unexpected payload %T for %s", evt.Payload, evt.Name)
	}
	_, _ = b.notifier.CreateSystem(ctx, CreateSystemNotificationInput{
		Kind:      models.KindAdminNotification,
		Title:     "Holiday Announced",
		Message:   fmt.Sprintf("%s on %s is a college holiday.", payload.Name, formatDate(payload.Date)),
		RelatedID: payload.HolidayID,
	})
	return nil
}

func (b *NotificationBindings) onHolidayDeleted(ctx context.Context, evt events.Event) error {
	payload, ok := evt.Payload.(events.HolidayChanged)
	if !ok {
		return fmt.Errorf("notification bindings: unexpected payload %T for %s", evt.Payload, evt.Name)
	}
	_, _ = b.notifier.CreateSystem(ctx, CreateSystemNotificationInput{
		Kind:      models.KindAdminNotification,
		Title:     "Holiday Cancelled",
		Message:   fmt.Sprintf("%s on %s is no longer a college holiday.", payload.Name, formatDate(payload.Date)),
		RelatedID: payload.HolidayID,
	})
	return nil
}

func (b *NotificationBindings) onAnnouncement(ctx context.Context, evt events.Event) error {
	payload, ok := evt.Payload.(events.Announcement)
	if !ok {
		return fmt.Errorf("notification bindings: unexpected payload %T for %s", evt.Payload, evt.Name)
	}

	title := payload.Title
	if title == "" {
		title = "Admin Notification"
	}
	for _, recipientID := range normaliseIDs(payload.Recipients) {
		_, _ = b.notifier.Create(ctx, CreateNotificationInput{
			RecipientID: recipientID,
			Kind:        models.KindAdminNotification,
			Title:       title,
			Message:     payload.Message,
			SenderID:    payload.SenderID,
		})
	}
	return nil
}
