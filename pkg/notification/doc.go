// Package notification provides a template-driven notification manager
// with pluggable delivery systems. The email notifier delivers through
// SMTP via wneessen/go-mail.
package notification
