package realtime

// Realtime events pushed on the notification stream.
const (
	StreamNotifications = "notifications"

	EventNotificationCreated = "notification.created"
	EventNotificationRead    = "notification.read"
	EventNotificationReadAll = "notification.read_all"
)
