package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/loginwatch/loginwatch/pkg/fingerprint"
	"github.com/loginwatch/loginwatch/pkg/geo"
	"github.com/loginwatch/loginwatch/pkg/notification"
)

// VerifyStatus classifies the outcome of a device verification.
type VerifyStatus int

const (
	// StatusKnownDevice means a matching record existed and was refreshed.
	StatusKnownDevice VerifyStatus = iota
	// StatusNewDevice means no record matched; one was created.
	StatusNewDevice
	// StatusFailed means verification did not complete; Outcome.Err is set.
	StatusFailed
)

// Outcome is the result of a Verify call. Callers match on it instead of
// error propagation so a verification failure can be kept away from the
// redirect path.
type Outcome struct {
	Status   VerifyStatus
	Notified bool
	Err      error
}

// Failed reports whether verification did not complete.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// VerifyParams carries the identity and request metadata of one login event.
type VerifyParams struct {
	UserID    uuid.UUID
	Email     string // Notification recipient
	UserAgent string
	ClientIP  string
	Locale    string // Accept-Language value of the originating request
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithNotificationsEnabled toggles the new-login notification. When off, new
// devices are still recorded but no message is sent.
func WithNotificationsEnabled(enabled bool) VerifierOption {
	return func(v *Verifier) {
		v.notifyEnabled = enabled
	}
}

// withClock overrides the clock. Tests only.
func withClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// Verifier decides whether a login comes from a known device/location pair
// for the user, sends a notification for unknown ones, and records history.
type Verifier struct {
	repository    Repository
	locator       geo.Locator
	fingerprinter *fingerprint.Fingerprinter
	notifier      notification.Notifier
	notifyEnabled bool
	now           func() time.Time
}

// NewVerifier creates a device verifier. Notifications are enabled by
// default.
func NewVerifier(repository Repository, locator geo.Locator, fingerprinter *fingerprint.Fingerprinter, notifier notification.Notifier, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		repository:    repository,
		locator:       locator,
		fingerprinter: fingerprinter,
		notifier:      notifier,
		notifyEnabled: true,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify resolves the login's location and device signature, compares them
// against the user's history, and either refreshes the matching record or
// notifies and records a new one. Every failure is logged here with its
// context and wrapped into the returned Outcome; nothing panics and nothing
// propagates past the outcome.
func (v *Verifier) Verify(ctx context.Context, params VerifyParams) Outcome {
	location, err := v.locator.Locate(ctx, params.ClientIP)
	if err != nil {
		slog.Error("Failed to resolve login location", "userID", params.UserID, "ip", params.ClientIP, "err", err)
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("failed to resolve login location: %w", err)}
	}

	deviceDetails := v.fingerprinter.Fingerprint(params.UserAgent)

	records, err := v.repository.FindByUserID(ctx, params.UserID)
	if err != nil {
		slog.Error("Failed to load device history", "userID", params.UserID, "err", err)
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("failed to load device history: %w", err)}
	}

	for _, rec := range records {
		if rec.DeviceDetails == deviceDetails && rec.Location == location {
			if _, err := v.repository.RefreshLastSeen(ctx, params.UserID, deviceDetails, location, v.now()); err != nil {
				slog.Error("Failed to refresh device record", "userID", params.UserID, "deviceDetails", deviceDetails, "location", location, "err", err)
				return Outcome{Status: StatusFailed, Err: fmt.Errorf("failed to refresh device record: %w", err)}
			}
			slog.Info("Known device", "userID", params.UserID, "deviceDetails", deviceDetails, "location", location)
			return Outcome{Status: StatusKnownDevice}
		}
	}

	notified := false
	if v.notifyEnabled {
		msg := notification.NewLoginMessage(params.Locale, deviceDetails, location, params.ClientIP)
		msg.To = params.Email
		if err := v.notifier.Send(ctx, msg); err != nil {
			slog.Error("Failed to send new login notification", "userID", params.UserID, "to", params.Email, "err", err)
			return Outcome{Status: StatusFailed, Err: fmt.Errorf("failed to send new login notification: %w", err)}
		}
		notified = true
	} else {
		slog.Info("Sending email notification on unknown device detection is off", "userID", params.UserID)
	}

	record := Record{
		UserID:        params.UserID,
		DeviceDetails: deviceDetails,
		Location:      location,
		LastSeenAt:    v.now(),
	}
	if _, err := v.repository.Create(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicateRecord) {
			// A concurrent login from the same device won the insert.
			// Treat this one as a known device and refresh instead.
			if _, err := v.repository.RefreshLastSeen(ctx, params.UserID, deviceDetails, location, v.now()); err != nil {
				slog.Error("Failed to refresh device record after insert conflict", "userID", params.UserID, "err", err)
				return Outcome{Status: StatusFailed, Err: fmt.Errorf("failed to refresh device record after insert conflict: %w", err)}
			}
			slog.Info("Device record insert lost to concurrent login, refreshed instead", "userID", params.UserID, "deviceDetails", deviceDetails, "location", location)
			return Outcome{Status: StatusKnownDevice, Notified: notified}
		}
		slog.Error("Failed to create device record", "userID", params.UserID, "deviceDetails", deviceDetails, "location", location, "err", err)
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("failed to create device record: %w", err)}
	}

	slog.Info("New device recorded", "userID", params.UserID, "deviceDetails", deviceDetails, "location", location, "notified", notified)
	return Outcome{Status: StatusNewDevice, Notified: notified}
}
