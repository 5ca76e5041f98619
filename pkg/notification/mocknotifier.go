package notification

import (
	"context"
	"sync"
)

// MockNotifier records notifications instead of delivering them. Used in
// tests and as a stand-in when no SMTP server is configured.
type MockNotifier struct {
	mu                sync.Mutex
	SentNotifications []NotificationData
}

func (m *MockNotifier) Send(ctx context.Context, notification NotificationData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentNotifications = append(m.SentNotifications, notification)
	return nil
}

// Sent returns a copy of the notifications recorded so far.
func (m *MockNotifier) Sent() []NotificationData {
	m.mu.Lock()
	defer m.mu.Unlock()
	sent := make([]NotificationData, len(m.SentNotifications))
	copy(sent, m.SentNotifications)
	return sent
}
