package notification

import "sync"

// SentNotification records a notification delivered through MockNotifier.
type SentNotification struct {
	Type     NotificationType
	Data     NotificationData
	Template NoticeTemplate
}

// MockNotifier collects notifications instead of delivering them.
// Intended for tests.
type MockNotifier struct {
	mu   sync.Mutex
	Sent []SentNotification
	Err  error // when set, Send returns this error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(noticeType NotificationType, notification NotificationData, template NoticeTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentNotification{
		Type:     noticeType,
		Data:     notification,
		Template: template,
	})
	return nil
}

// SentTo returns the notifications sent to the given recipient.
func (m *MockNotifier) SentTo(to string) []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []SentNotification
	for _, s := range m.Sent {
		if s.Data.To == to {
			out = append(out, s)
		}
	}
	return out
}
