package models

import "time"

// NotificationKind classifies dashboard notifications. The set is closed.
type NotificationKind string

const (
	KindLeaveStudent      NotificationKind = "leave_student"
	KindLeaveStaff        NotificationKind = "leave_staff"
	KindFeedbackStudent   NotificationKind = "feedback_student"
	KindFeedbackStaff     NotificationKind = "feedback_staff"
	KindResultUpdate      NotificationKind = "result_update"
	KindAdminNotification NotificationKind = "admin_notification"
	KindLeaveReply        NotificationKind = "leave_reply"
	KindFeedbackReply     NotificationKind = "feedback_reply"
)

var notificationKinds = map[NotificationKind]struct {
	label string
	icon  string
}{
	KindLeaveStudent:      {"Student Leave Request", "📅"},
	KindLeaveStaff:        {"Staff Leave Request", "📅"},
	KindFeedbackStudent:   {"Student Feedback", "💬"},
	KindFeedbackStaff:     {"Staff Feedback", "💬"},
	KindResultUpdate:      {"Result Updated", "📊"},
	KindAdminNotification: {"Admin Notification", "📢"},
	KindLeaveReply:        {"Leave Reply", "↩️"},
	KindFeedbackReply:     {"Feedback Reply", "↩️"},
}

// NotificationKinds lists every valid kind.
func NotificationKinds() []NotificationKind {
	return []NotificationKind{
		KindLeaveStudent,
		KindLeaveStaff,
		KindFeedbackStudent,
		KindFeedbackStaff,
		KindResultUpdate,
		KindAdminNotification,
		KindLeaveReply,
		KindFeedbackReply,
	}
}

// Valid reports whether k belongs to the closed set.
func (k NotificationKind) Valid() bool {
	_, ok := notificationKinds[k]
	return ok
}

// Label is the human readable name of the kind.
func (k NotificationKind) Label() string {
	return notificationKinds[k].label
}

// Icon is the widget glyph for the kind.
func (k NotificationKind) Icon() string {
	return notificationKinds[k].icon
}

// Notification is a dashboard entry owned by exactly one recipient.
// Broadcast notices are owned by the system sentinel account.
type Notification struct {
	BaseModel

	RecipientID string   `gorm:"type:varchar(36);not null;index:idx_notification_recipient_read,priority:1" json:"recipient_id"`
	Recipient   *Account `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
	SenderID    *string  `gorm:"type:varchar(36);index" json:"sender_id"`
	Sender      *Account `gorm:"foreignKey:SenderID;constraint:OnDelete:SET NULL" json:"-"`

	Kind      NotificationKind `gorm:"type:varchar(32);not null;index" json:"type"`
	Title     string           `gorm:"type:varchar(200);not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	RelatedID *string          `gorm:"type:varchar(36)" json:"related_id"`

	IsRead bool       `gorm:"not null;default:false;index:idx_notification_recipient_read,priority:2" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}

// SenderName returns the sender's display name, or "System" when absent.
func (n Notification) SenderName() string {
	if n.Sender == nil {
		return "System"
	}
	return n.Sender.FullName()
}
