package notification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoginMessageEnglish(t *testing.T) {
	msg := NewLoginMessage("en-US", "Chrome 120.0 - Mac OS X 10.15", "Berlin", "203.0.113.5")

	assert.Equal(t, LoginNotificationSubject, msg.Subject)

	lines := strings.Split(msg.Body, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Device details: Chrome 120.0 - Mac OS X 10.15", lines[0])
	assert.Equal(t, "Location: Berlin", lines[1])
	assert.Equal(t, "IP address: 203.0.113.5", lines[2])
}

func TestNewLoginMessageGerman(t *testing.T) {
	msg := NewLoginMessage("de-DE", "Firefox 121.0 - Windows 10.", "UNKNOWN", "10.0.0.1")

	lines := strings.Split(msg.Body, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Geräteinformationen:"))
	assert.True(t, strings.HasPrefix(lines[1], "Standort:"))
	assert.True(t, strings.HasPrefix(lines[2], "IP-Adresse:"))
}

func TestNewLoginMessageFallsBackToEnglish(t *testing.T) {
	msg := NewLoginMessage("zz-ZZ", "d", "l", "i")
	assert.True(t, strings.HasPrefix(msg.Body, "Device details:"))
}

func TestNewLoginMessageEmptyLocale(t *testing.T) {
	msg := NewLoginMessage("", "d", "l", "i")
	assert.True(t, strings.HasPrefix(msg.Body, "Device details:"))
}
