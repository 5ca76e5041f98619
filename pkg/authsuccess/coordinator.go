// Package authsuccess sequences everything that happens after a credential
// check succeeds: session establishment, the role-based redirect, and device
// verification.
package authsuccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/loginwatch/loginwatch/pkg/device"
	"github.com/loginwatch/loginwatch/pkg/geo"
	"github.com/loginwatch/loginwatch/pkg/identity"
	"github.com/loginwatch/loginwatch/pkg/redirect"
	"github.com/loginwatch/loginwatch/pkg/session"
)

// ErrVerificationFailed wraps a device-verification failure. It is distinct
// from a redirect failure: by the time it surfaces, the redirect has already
// been written and must not be disturbed.
var ErrVerificationFailed = errors.New("device verification failed")

// DefaultVerifyTimeout bounds the geolocation and mail calls made during
// device verification.
const DefaultVerifyTimeout = 10 * time.Second

// Coordinator handles one successful authentication event: it computes the
// role-based redirect, establishes the session, and runs device
// verification, keeping verification failures away from the redirect path.
type Coordinator struct {
	sessions      *session.Manager
	verifier      *device.Verifier
	verifyTimeout time.Duration
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithVerifyTimeout overrides the device-verification timeout.
func WithVerifyTimeout(timeout time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.verifyTimeout = timeout
	}
}

// NewCoordinator creates a coordinator.
func NewCoordinator(sessions *session.Manager, verifier *device.Verifier, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		sessions:      sessions,
		verifier:      verifier,
		verifyTimeout: DefaultVerifyTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSuccess runs the post-authentication sequence for ident. A returned
// ErrVerificationFailed means the redirect and session are intact and only
// the device check failed; any other error means the redirect could not be
// issued.
func (c *Coordinator) OnSuccess(w http.ResponseWriter, r *http.Request, ident identity.Identity) error {
	target, err := redirect.Decide(ident.LoginName(), ident.Privileges())
	if err != nil {
		slog.Error("No redirect target for identity", "loginName", ident.LoginName(), "err", err)
		return fmt.Errorf("failed to determine redirect target: %w", err)
	}

	// Session cookie and attributes must be in place before the redirect
	// bytes go out; the observable contract is unchanged.
	sess := c.sessions.Establish(w, r)
	c.sessions.SetAttribute(sess, session.UserAttribute, ident.LoginName())
	c.sessions.RemoveAttribute(sess, session.AuthErrorAttribute)

	if committed(w) {
		slog.Warn("Response already committed, unable to redirect", "target", target)
	} else {
		http.Redirect(w, r, target, http.StatusFound)
	}

	return c.loginNotification(r, ident)
}

// loginNotification runs device verification for principals backed by a
// stored user account. Failures are logged and wrapped; they never affect
// the response already produced.
func (c *Coordinator) loginNotification(r *http.Request, ident identity.Identity) error {
	subject, ok := ident.(identity.Subject)
	if !ok {
		slog.Debug("Principal has no stored account, skipping device verification", "loginName", ident.LoginName())
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), c.verifyTimeout)
	defer cancel()

	outcome := c.verifier.Verify(ctx, device.VerifyParams{
		UserID:    subject.ID(),
		Email:     subject.Email(),
		UserAgent: r.UserAgent(),
		ClientIP:  geo.ExtractClientIP(r),
		Locale:    r.Header.Get("Accept-Language"),
	})
	if outcome.Failed() {
		slog.Error("An error occurred while verifying device or location", "loginName", ident.LoginName(), "err", outcome.Err)
		return fmt.Errorf("%w: %w", ErrVerificationFailed, outcome.Err)
	}
	return nil
}

// committed reports whether a response write has already begun. Handlers
// wrapped by chi's middleware (or anything using WrapResponseWriter) expose
// this; bare writers are assumed uncommitted.
func committed(w http.ResponseWriter) bool {
	if ww, ok := w.(middleware.WrapResponseWriter); ok {
		return ww.Status() != 0 || ww.BytesWritten() > 0
	}
	return false
}
