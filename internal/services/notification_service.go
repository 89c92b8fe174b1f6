package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/collegehub/internal/models"
	"github.com/charlesng35/collegehub/internal/realtime"
	apperrors "github.com/charlesng35/collegehub/pkg/errors"
	"github.com/charlesng35/collegehub/pkg/logger"
	"github.com/charlesng35/collegehub/pkg/metrics"
)

// ErrUnknownRecipient is returned when the recipient id does not reference an account.
var ErrUnknownRecipient = apperrors.New("NOTIFICATION_RECIPIENT_UNKNOWN", "Recipient does not exist", http.StatusBadRequest)

// NotificationPublisher pushes realtime events to connected dashboards.
// Both the local hub and the redis relay satisfy it.
type NotificationPublisher interface {
	BroadcastToUser(accountID string, message realtime.Message)
	Broadcast(message realtime.Message)
}

// NotificationDTO represents the widget-friendly notification payload.
type NotificationDTO struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipient_id"`
	Type        string     `json:"type"`
	Label       string     `json:"label"`
	Icon        string     `json:"icon"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	SenderID    *string    `json:"sender_id,omitempty"`
	Sender      string     `json:"sender"`
	RelatedID   *string    `json:"related_id"`
	IsRead      bool       `json:"is_read"`
	Broadcast   bool       `json:"broadcast"`
	CreatedAt   time.Time  `json:"created_at"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

// CreateNotificationInput defines attributes required to persist a notification.
type CreateNotificationInput struct {
	RecipientID string
	Kind        models.NotificationKind
	Title       string
	Message     string
	SenderID    string
	RelatedID   string
}

// CreateSystemNotificationInput defines a broadcast notice owned by the system account.
type CreateSystemNotificationInput struct {
	Kind      models.NotificationKind
	Title     string
	Message   string
	RelatedID string
}

// NotificationEventPayload represents data sent to realtime consumers.
type NotificationEventPayload struct {
	Notification   *NotificationDTO `json:"notification,omitempty"`
	NotificationID string           `json:"notification_id,omitempty"`
	MarkedCount    int              `json:"marked_count,omitempty"`
}

// NotificationService is the only writer of dashboard notifications.
// Read paths never fail: storage errors are logged and an empty value is returned.
type NotificationService struct {
	db        *gorm.DB
	directory *AccountDirectory
	publisher NotificationPublisher
	now       func() time.Time
	log       *zap.Logger
}

// NewNotificationService constructs a NotificationService. publisher may be nil.
func NewNotificationService(db *gorm.DB, directory *AccountDirectory, publisher NotificationPublisher) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	if directory == nil {
		return nil, errors.New("notification service: account directory is required")
	}
	return &NotificationService{
		db:        db,
		directory: directory,
		publisher: publisher,
		now:       time.Now,
		log:       logger.WithModule("notifications"),
	}, nil
}

// Create inserts one notification for a single recipient.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, error) {
	return s.create(ensureContext(ctx), input, false)
}

// CreateSystem inserts a broadcast notice owned by the system account. It has no sender.
func (s *NotificationService) CreateSystem(ctx context.Context, input CreateSystemNotificationInput) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)
	systemID, err := s.directory.SystemAccountID(ctx)
	if err != nil {
		metrics.NotificationsCreated.WithLabelValues(string(input.Kind), "failed").Inc()
		s.log.Error("resolve system account", zap.String("kind", string(input.Kind)), zap.Error(err))
		return nil, fmt.Errorf("notification service: resolve system account: %w", err)
	}
	return s.create(ctx, CreateNotificationInput{
		RecipientID: systemID,
		Kind:        input.Kind,
		Title:       input.Title,
		Message:     input.Message,
		RelatedID:   input.RelatedID,
	}, true)
}

// NotifyAdmins creates one notification per currently active admin and returns how many were stored.
func (s *NotificationService) NotifyAdmins(ctx context.Context, input CreateNotificationInput) int {
	ctx = ensureContext(ctx)
	admins, err := s.directory.ActiveAdmins(ctx)
	if err != nil {
		s.log.Error("list admins for fan-out", zap.String("kind", string(input.Kind)), zap.Error(err))
		return 0
	}

	created := 0
	for _, admin := range admins {
		input.RecipientID = admin.ID
		if _, err := s.create(ctx, input, false); err == nil {
			created++
		}
	}
	return created
}

func (s *NotificationService) create(ctx context.Context, input CreateNotificationInput, broadcast bool) (*NotificationDTO, error) {
	kind := models.NotificationKind(strings.TrimSpace(string(input.Kind)))
	if !kind.Valid() {
		metrics.NotificationsCreated.WithLabelValues("unknown", "rejected").Inc()
		return nil, ErrUnknownKind
	}
	recipientID := strings.TrimSpace(input.RecipientID)
	if recipientID == "" {
		metrics.NotificationsCreated.WithLabelValues(string(kind), "rejected").Inc()
		return nil, apperrors.NewBadRequest("recipient is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = kind.Label()
	}

	row := models.Notification{
		RecipientID: recipientID,
		SenderID:    stringPtr(input.SenderID),
		Kind:        kind,
		Title:       title,
		Message:     strings.TrimSpace(input.Message),
		RelatedID:   stringPtr(input.RelatedID),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		metrics.NotificationsCreated.WithLabelValues(string(kind), "failed").Inc()
		s.log.Error("create notification",
			zap.String("recipient_id", recipientID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrUnknownRecipient.WithInternal(err)
		}
		return nil, fmt.Errorf("notification service: create notification: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(kind), "created").Inc()

	if row.SenderID != nil {
		var sender models.Account
		if err := s.db.WithContext(ctx).First(&sender, "id = ?", *row.SenderID).Error; err == nil {
			row.Sender = &sender
		}
	}

	dto := mapNotification(row, broadcast)
	message := realtime.Message{
		Event: realtime.EventNotificationCreated,
		Data:  &NotificationEventPayload{Notification: &dto},
	}
	if broadcast {
		s.publishAll(message)
	} else {
		s.publish(recipientID, message)
	}
	return &dto, nil
}

// ListUnread returns unread notifications visible to recipientID, newest first.
// Visible means owned by the recipient or by the system account. limit <= 0 means no limit.
func (s *NotificationService) ListUnread(ctx context.Context, recipientID string, limit int) []NotificationDTO {
	ctx = ensureContext(ctx)
	owners, systemID := s.visibleOwners(ctx, recipientID)
	if len(owners) == 0 {
		return []NotificationDTO{}
	}

	query := s.db.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id IN ? AND is_read = ?", owners, false).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.Notification
	if err := query.Find(&rows).Error; err != nil {
		s.log.Error("list unread notifications", zap.String("recipient_id", recipientID), zap.Error(err))
		return []NotificationDTO{}
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row, systemID != "" && row.RecipientID == systemID))
	}
	return items
}

// CountUnread returns the exact number of unread notifications visible to recipientID.
func (s *NotificationService) CountUnread(ctx context.Context, recipientID string) int {
	ctx = ensureContext(ctx)
	owners, _ := s.visibleOwners(ctx, recipientID)
	if len(owners) == 0 {
		return 0
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id IN ? AND is_read = ?", owners, false).
		Count(&count).Error; err != nil {
		s.log.Error("count unread notifications", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0
	}
	return int(count)
}

// MarkAllRead flips every unread notification visible to recipientID and returns how many changed.
// A second call with no new notifications returns 0.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) int {
	ctx = ensureContext(ctx)
	owners, _ := s.visibleOwners(ctx, recipientID)
	if len(owners) == 0 {
		return 0
	}

	now := s.now().UTC()
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id IN ? AND is_read = ?", owners, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		})
	if result.Error != nil {
		s.log.Error("mark all notifications read", zap.String("recipient_id", recipientID), zap.Error(result.Error))
		return 0
	}

	marked := int(result.RowsAffected)
	if marked > 0 {
		metrics.NotificationsMarkedRead.Add(float64(marked))
		s.publish(strings.TrimSpace(recipientID), realtime.Message{
			Event: realtime.EventNotificationReadAll,
			Data:  &NotificationEventPayload{MarkedCount: marked},
		})
	}
	return marked
}

// MarkRead flips a single notification addressed to recipientID.
// Entries that do not exist, entries owned by someone else and system broadcasts all yield
// ErrNotificationNotFound; broadcasts are cleared through MarkAllRead.
// Marking an entry that is already read succeeds without changes.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	ctx = ensureContext(ctx)
	recipientID = strings.TrimSpace(recipientID)
	notificationID = strings.TrimSpace(notificationID)
	if recipientID == "" || notificationID == "" {
		return ErrNotificationNotFound
	}

	var row models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.log.Error("load notification", zap.String("notification_id", notificationID), zap.Error(err))
		return fmt.Errorf("notification service: load notification: %w", err)
	}
	if row.IsRead {
		return nil
	}

	now := s.now().UTC()
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", row.ID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		})
	if result.Error != nil {
		s.log.Error("mark notification read", zap.String("notification_id", notificationID), zap.Error(result.Error))
		return fmt.Errorf("notification service: mark read: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.NotificationsMarkedRead.Inc()
		s.publish(recipientID, realtime.Message{
			Event: realtime.EventNotificationRead,
			Data:  &NotificationEventPayload{NotificationID: row.ID},
		})
	}
	return nil
}

// visibleOwners returns the recipient ids whose rows the caller can see: itself and the system account.
// When the system account cannot be resolved the caller still sees its own rows.
func (s *NotificationService) visibleOwners(ctx context.Context, recipientID string) ([]string, string) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, ""
	}
	systemID, err := s.directory.SystemAccountID(ctx)
	if err != nil {
		s.log.Warn("resolve system account", zap.Error(err))
		return []string{recipientID}, ""
	}
	return normaliseIDs([]string{recipientID, systemID}), systemID
}

func (s *NotificationService) publish(accountID string, message realtime.Message) {
	if s.publisher == nil || accountID == "" {
		return
	}
	s.publisher.BroadcastToUser(accountID, message)
}

func (s *NotificationService) publishAll(message realtime.Message) {
	if s.publisher == nil {
		return
	}
	s.publisher.Broadcast(message)
}

func mapNotification(row models.Notification, broadcast bool) NotificationDTO {
	return NotificationDTO{
		ID:          row.ID,
		RecipientID: row.RecipientID,
		Type:        string(row.Kind),
		Label:       row.Kind.Label(),
		Icon:        row.Kind.Icon(),
		Title:       row.Title,
		Message:     row.Message,
		SenderID:    row.SenderID,
		Sender:      row.SenderName(),
		RelatedID:   row.RelatedID,
		IsRead:      row.IsRead,
		Broadcast:   broadcast,
		CreatedAt:   row.CreatedAt,
		ReadAt:      row.ReadAt,
	}
}
