package notice

import (
	"embed"
	"log/slog"

	"github.com/tendant/simple-user/pkg/notification"
)

// Notification types issued by the user-management flows.
const (
	SignupNotice          notification.NotificationType = "signup"
	PasswordResetInit     notification.NotificationType = "password_reset_init"
	PasswordResetComplete notification.NotificationType = "password_reset_complete"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// Option configures the notification manager built by NewNotificationManager.
type Option func(*notification.NotificationManager) error

// WithSMTP registers an email notifier for the given SMTP config.
func WithSMTP(config notification.SMTPConfig) Option {
	return func(nm *notification.NotificationManager) error {
		emailNotifier, err := notification.NewEmailNotifier(config)
		if err != nil {
			return err
		}
		nm.RegisterNotifier(notification.EmailSystem, emailNotifier)
		return nil
	}
}

// WithNotifier registers an arbitrary notifier, useful for tests.
func WithNotifier(system notification.NotificationSystem, notifier notification.Notifier) Option {
	return func(nm *notification.NotificationManager) error {
		nm.RegisterNotifier(system, notifier)
		return nil
	}
}

// NewNotificationManager builds a manager with the user-management email
// templates registered.
func NewNotificationManager(baseUrl string, opts ...Option) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager(baseUrl)

	for _, opt := range opts {
		if err := opt(notificationManager); err != nil {
			return nil, err
		}
	}

	err := notificationManager.RegisterNotification(SignupNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Welcome! Activate your account",
		Html:    loadTemplate("templates/email/signup.tmpl"),
	})
	if err != nil {
		return nil, err
	}

	err = notificationManager.RegisterNotification(PasswordResetInit, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Password Reset Request",
		Html:    loadTemplate("templates/email/password_reset.tmpl"),
	})
	if err != nil {
		return nil, err
	}

	err = notificationManager.RegisterNotification(PasswordResetComplete, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your password has been changed",
		Html:    loadTemplate("templates/email/password_changed.tmpl"),
	})
	if err != nil {
		return nil, err
	}

	return notificationManager, nil
}
