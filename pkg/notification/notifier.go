package notification

// NotificationSystem represents a delivery channel (e.g. email, SMS).
type NotificationSystem string

// NotificationType identifies a notification template (e.g. "signup").
type NotificationType string

const (
	EmailSystem NotificationSystem = "email"
	SMSSystem   NotificationSystem = "sms"
)

type NotificationData struct {
	To   string            // Recipient identifier (e.g., email address)
	Data map[string]string // Template data
}

// NoticeTemplate holds the renderable parts of a notification.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type Notifier interface {
	Send(noticeType NotificationType, notification NotificationData, template NoticeTemplate) error
}
