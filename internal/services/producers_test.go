package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/collegehub/internal/models"
	apperrors "github.com/charlesng35/collegehub/pkg/errors"
)

func TestLeaveServiceValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.account(t, models.RoleAdmin, "abe", "hod")
	student := env.account(t, models.RoleStudent, "bea", "fox")

	leaves, err := NewLeaveService(env.db, nil)
	require.NoError(t, err)

	_, err = leaves.Apply(ctx, admin, ApplyLeaveInput{Date: time.Now()})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = leaves.Apply(ctx, student, ApplyLeaveInput{})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)
	_, err = leaves.Apply(ctx, student, ApplyLeaveInput{Date: start, EndDate: &before})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	leave, err := leaves.Apply(ctx, student, ApplyLeaveInput{Date: start})
	require.NoError(t, err)
	require.Equal(t, models.LeavePending, leave.Status)

	_, err = leaves.Decide(ctx, student, leave.ID, true)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = leaves.Decide(ctx, admin, "missing", true)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	decided, err := leaves.Decide(ctx, admin, leave.ID, true)
	require.NoError(t, err)
	require.Equal(t, models.LeaveApproved, decided.Status)

	history, err := leaves.ListForAccount(ctx, student.ID())
	require.NoError(t, err)
	require.Len(t, history, 1)
	byRole, err := leaves.ListByRole(ctx, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, byRole, 1)

	require.Empty(t, env.notificationsFor(t, student.ID()))
}

func TestFeedbackServiceValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.account(t, models.RoleAdmin, "cal", "hod")
	staff := env.account(t, models.RoleStaff, "dee", "ray")

	feedback, err := NewFeedbackService(env.db, nil)
	require.NoError(t, err)

	_, err = feedback.Submit(ctx, staff, "   ")
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = feedback.Submit(ctx, admin, "hello")
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	entry, err := feedback.Submit(ctx, staff, "Projector in room 4 is broken")
	require.NoError(t, err)
	require.Equal(t, models.RoleStaff, entry.Role)

	_, err = feedback.Reply(ctx, staff, entry.ID, "fixed")
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = feedback.Reply(ctx, admin, entry.ID, "")
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	replied, err := feedback.Reply(ctx, admin, entry.ID, "Technician booked")
	require.NoError(t, err)
	require.Equal(t, "Technician booked", replied.Reply)

	items, err := feedback.ListByRole(ctx, models.RoleStaff)
	require.NoError(t, err)
	require.Len(t, items, 1)
	mine, err := feedback.ListForAccount(ctx, staff.ID())
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestResultServiceValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.account(t, models.RoleStaff, "eda", "kent")
	otherStaff := env.account(t, models.RoleStaff, "fin", "walsh")
	student := env.account(t, models.RoleStudent, "gil", "ross")
	subject := env.subject(t, "Physics", owner)

	results, err := NewResultService(env.db, nil)
	require.NoError(t, err)

	_, _, err = results.Save(ctx, owner, SaveResultInput{StudentID: student.Student.ID, SubjectID: subject.ID, Test: 101, Exam: 50})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, _, err = results.Save(ctx, owner, SaveResultInput{StudentID: student.Student.ID, SubjectID: subject.ID, Test: 10, Exam: -1})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, _, err = results.Save(ctx, otherStaff, SaveResultInput{StudentID: student.Student.ID, SubjectID: subject.ID, Test: 10, Exam: 40})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	_, _, err = results.Save(ctx, student, SaveResultInput{StudentID: student.Student.ID, SubjectID: subject.ID})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	_, _, err = results.Save(ctx, owner, SaveResultInput{StudentID: "missing", SubjectID: subject.ID, Test: 1, Exam: 1})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, created, err := results.Save(ctx, owner, SaveResultInput{StudentID: student.Student.ID, SubjectID: subject.ID, Test: 20, Exam: 70})
	require.NoError(t, err)
	require.True(t, created)

	listed, err := results.ListForStudent(ctx, student.Student.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "Physics", listed[0].Subject.Name)
}

func TestHolidayServiceRejectsDuplicateDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	holidays, err := NewHolidayService(env.db, nil)
	require.NoError(t, err)

	date := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)
	_, err = holidays.Create(ctx, "Christmas", date)
	require.NoError(t, err)
	_, err = holidays.Create(ctx, "Also Christmas", date)
	require.ErrorIs(t, err, ErrHolidayExists)
	_, err = holidays.Create(ctx, "", date.AddDate(0, 0, 1))
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = holidays.Create(ctx, "New Year", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	list, err := holidays.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Christmas", list[0].Name)

	require.ErrorIs(t, holidays.Delete(ctx, "missing"), apperrors.ErrNotFound)
}

func TestProducersSucceedWhenNotificationStorageFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.account(t, models.RoleAdmin, "ola", "hod")
	student := env.account(t, models.RoleStudent, "pat", "kerr")
	env.systemID(t)

	require.NoError(t, env.db.Migrator().DropTable(&models.Notification{}))

	holidays, err := NewHolidayService(env.db, env.dispatcher)
	require.NoError(t, err)
	leaves, err := NewLeaveService(env.db, env.dispatcher)
	require.NoError(t, err)

	holiday, err := holidays.Create(ctx, "Founders Day", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	var stored models.Holiday
	require.NoError(t, env.db.First(&stored, "id = ?", holiday.ID).Error)

	leave, err := leaves.Apply(ctx, student, ApplyLeaveInput{Date: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	var storedLeave models.LeaveRequest
	require.NoError(t, env.db.First(&storedLeave, "id = ?", leave.ID).Error)

	require.NoError(t, holidays.Delete(ctx, holiday.ID))
	var remaining int64
	require.NoError(t, env.db.Model(&models.Holiday{}).Count(&remaining).Error)
	require.Zero(t, remaining)
}

func TestAnnouncementServiceValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.account(t, models.RoleAdmin, "hal", "hod")
	staff := env.account(t, models.RoleStaff, "ida", "bell")

	announcements, err := NewAnnouncementService(env.db, nil)
	require.NoError(t, err)

	_, err = announcements.Send(ctx, staff, AnnouncementInput{Audience: models.RoleStudent, Message: "hi"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = announcements.Send(ctx, admin, AnnouncementInput{Audience: models.RoleStaff})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = announcements.Send(ctx, admin, AnnouncementInput{Audience: models.RoleAdmin, Message: "hi"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = announcements.Send(ctx, admin, AnnouncementInput{Audience: models.RoleStudent, Message: "hi"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	sent, err := announcements.Send(ctx, admin, AnnouncementInput{Audience: models.RoleStaff, Message: "hi"})
	require.NoError(t, err)
	require.Equal(t, 1, sent)
}

func TestPreview(t *testing.T) {
	require.Equal(t, "short", preview("  short  "))
	exact := "12345678901234567890123456789012345678901234567890"
	require.Equal(t, exact, preview(exact))
	require.Equal(t, exact+"...", preview(exact+"1"))
	require.Equal(t, strings.Repeat("é", 50)+"...", preview(strings.Repeat("é", 60)))
}
