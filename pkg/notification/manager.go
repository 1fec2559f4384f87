package notification

import (
	"fmt"
)

// NotificationManager routes notifications to registered notifiers using
// templates registered per notification type and system.
type NotificationManager struct {
	BaseUrl   string
	notifiers map[NotificationSystem]Notifier
	registry  map[NotificationType]map[NotificationSystem]NoticeTemplate
}

// NewNotificationManager creates a manager. BaseUrl is the frontend base
// used when templates render absolute links.
func NewNotificationManager(baseUrl string) *NotificationManager {
	return &NotificationManager{
		BaseUrl:   baseUrl,
		notifiers: make(map[NotificationSystem]Notifier),
		registry:  make(map[NotificationType]map[NotificationSystem]NoticeTemplate),
	}
}

// RegisterNotifier registers a notifier for a delivery system.
func (nm *NotificationManager) RegisterNotifier(system NotificationSystem, notifier Notifier) {
	nm.notifiers[system] = notifier
}

// RegisterNotification adds a template for a notification type and system.
func (nm *NotificationManager) RegisterNotification(notifType NotificationType, system NotificationSystem, template NoticeTemplate) error {
	if notifType == "" || system == "" {
		return fmt.Errorf("invalid input: notification type and system cannot be empty")
	}

	if _, exists := nm.registry[notifType]; !exists {
		nm.registry[notifType] = make(map[NotificationSystem]NoticeTemplate)
	}

	nm.registry[notifType][system] = template
	return nil
}

// Send delivers a notification through every system that has both a
// registered template and a registered notifier for notifType.
func (nm *NotificationManager) Send(notifType NotificationType, notification NotificationData) error {
	systemTemplates, exists := nm.registry[notifType]
	if !exists {
		return fmt.Errorf("no templates registered for notification type: %s", notifType)
	}

	var sent bool
	for system, template := range systemTemplates {
		notifier, ok := nm.notifiers[system]
		if !ok {
			continue
		}
		if err := notifier.Send(notifType, notification, template); err != nil {
			return err
		}
		sent = true
	}

	if !sent {
		return fmt.Errorf("no notifier registered for notification type: %s", notifType)
	}
	return nil
}
