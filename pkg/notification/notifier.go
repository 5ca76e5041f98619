// Package notification delivers pre-composed security messages to users.
package notification

import "context"

// NotificationData is a single pre-built message addressed to a recipient.
type NotificationData struct {
	To      string // Recipient address (email)
	Subject string
	Body    string // Plain-text content
}

// Notifier delivers a notification. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Send(ctx context.Context, notification NotificationData) error
}
