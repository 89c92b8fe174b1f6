package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/database/testutil"
	"github.com/charlesng35/collegehub/internal/events"
	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/internal/realtime"
)

type recordingPublisher struct {
	mu        sync.Mutex
	direct    map[string][]realtime.Message
	broadcast []realtime.Message
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{direct: make(map[string][]realtime.Message)}
}

func (p *recordingPublisher) BroadcastToUser(accountID string, message realtime.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.direct[accountID] = append(p.direct[accountID], message)
}

func (p *recordingPublisher) Broadcast(message realtime.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcast = append(p.broadcast, message)
}

func (p *recordingPublisher) sentTo(accountID string) []realtime.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]realtime.Message(nil), p.direct[accountID]...)
}

type testEnv struct {
	db         *gorm.DB
	directory  *AccountDirectory
	notifier   *NotificationService
	publisher  *recordingPublisher
	dispatcher *events.Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	directory, err := NewAccountDirectory(db, "")
	require.NoError(t, err)

	publisher := newRecordingPublisher()
	notifier, err := NewNotificationService(db, directory, publisher)
	require.NoError(t, err)

	dispatcher := events.NewDispatcher()
	require.NoError(t, RegisterNotificationBindings(dispatcher, db, notifier, directory))

	return &testEnv{
		db:         db,
		directory:  directory,
		notifier:   notifier,
		publisher:  publisher,
		dispatcher: dispatcher,
	}
}

func (e *testEnv) account(t *testing.T, role models.Role, first, last string) *Principal {
	t.Helper()

	principal := &Principal{Account: models.Account{
		Email:     first + "." + last + "@college.edu",
		FirstName: first,
		LastName:  last,
		Role:      role,
		IsActive:  true,
	}}
	require.NoError(t, e.db.Create(&principal.Account).Error)

	switch role {
	case models.RoleStudent:
		principal.Student = &models.Student{AccountID: principal.Account.ID, RegistrationNumber: "STU-" + first}
		require.NoError(t, e.db.Create(principal.Student).Error)
	case models.RoleStaff:
		principal.Staff = &models.Staff{AccountID: principal.Account.ID, StaffIDNumber: "STF-" + first}
		require.NoError(t, e.db.Create(principal.Staff).Error)
	}
	return principal
}

func (e *testEnv) subject(t *testing.T, name string, teacher *Principal) *models.Subject {
	t.Helper()
	subject := &models.Subject{Name: name, StaffID: teacher.Staff.ID}
	require.NoError(t, e.db.Create(subject).Error)
	return subject
}

func (e *testEnv) notificationsFor(t *testing.T, recipientID string) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, e.db.Where("recipient_id = ?", recipientID).Order("created_at ASC").Find(&rows).Error)
	return rows
}

func (e *testEnv) systemID(t *testing.T) string {
	t.Helper()
	id, err := e.directory.SystemAccountID(context.Background())
	require.NoError(t, err)
	return id
}
