package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginwatch/loginwatch/pkg/fingerprint"
	"github.com/loginwatch/loginwatch/pkg/notification"
)

const testUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type stubLocator struct {
	location string
	err      error
}

func (s stubLocator) Locate(ctx context.Context, ip string) (string, error) {
	return s.location, s.err
}

type failingNotifier struct {
	err error
}

func (f failingNotifier) Send(ctx context.Context, n notification.NotificationData) error {
	return f.err
}

// conflictOnCreateRepository simulates losing the insert race: the history
// scan sees no records yet, but by the time Create runs a concurrent login
// has already inserted the same natural key into the underlying store.
type conflictOnCreateRepository struct {
	*InMemRepository
}

func (r conflictOnCreateRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]Record, error) {
	return nil, nil
}

func (r conflictOnCreateRepository) Create(ctx context.Context, record Record) (Record, error) {
	return Record{}, ErrDuplicateRecord
}

func setupVerifier(t *testing.T, repo Repository, opts ...VerifierOption) (*Verifier, *notification.MockNotifier) {
	t.Helper()
	notifier := &notification.MockNotifier{}
	opts = append(opts, withClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
	verifier := NewVerifier(repo, stubLocator{location: "Berlin"}, fingerprint.New(), notifier, opts...)
	return verifier, notifier
}

func testParams(userID uuid.UUID) VerifyParams {
	return VerifyParams{
		UserID:    userID,
		Email:     "alice@example.com",
		UserAgent: testUserAgent,
		ClientIP:  "203.0.113.5",
		Locale:    "en-US",
	}
}

func TestVerifyNewDevice(t *testing.T) {
	repo := NewInMemRepository()
	verifier, notifier := setupVerifier(t, repo)
	ctx := context.Background()
	userID := uuid.New()

	outcome := verifier.Verify(ctx, testParams(userID))
	require.False(t, outcome.Failed())
	assert.Equal(t, StatusNewDevice, outcome.Status)
	assert.True(t, outcome.Notified)

	records, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Chrome 120.0 - Mac OS X 10.15", records[0].DeviceDetails)
	assert.Equal(t, "Berlin", records[0].Location)

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].To)
	assert.Equal(t, notification.LoginNotificationSubject, sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Chrome 120.0 - Mac OS X 10.15")
	assert.Contains(t, sent[0].Body, "Berlin")
	assert.Contains(t, sent[0].Body, "203.0.113.5")
}

func TestVerifyKnownDevice(t *testing.T) {
	repo := NewInMemRepository()
	verifier, notifier := setupVerifier(t, repo)
	ctx := context.Background()
	userID := uuid.New()

	firstSeen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, Record{
		UserID:        userID,
		DeviceDetails: "Chrome 120.0 - Mac OS X 10.15",
		Location:      "Berlin",
		LastSeenAt:    firstSeen,
	})
	require.NoError(t, err)

	outcome := verifier.Verify(ctx, testParams(userID))
	require.False(t, outcome.Failed())
	assert.Equal(t, StatusKnownDevice, outcome.Status)
	assert.False(t, outcome.Notified)
	assert.Empty(t, notifier.Sent())

	records, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].LastSeenAt.After(firstSeen))
}

func TestVerifyIdempotent(t *testing.T) {
	repo := NewInMemRepository()
	verifier, notifier := setupVerifier(t, repo)
	ctx := context.Background()
	userID := uuid.New()

	first := verifier.Verify(ctx, testParams(userID))
	assert.Equal(t, StatusNewDevice, first.Status)

	second := verifier.Verify(ctx, testParams(userID))
	assert.Equal(t, StatusKnownDevice, second.Status)

	records, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Len(t, notifier.Sent(), 1)
}

func TestVerifyNotificationsDisabled(t *testing.T) {
	repo := NewInMemRepository()
	verifier, notifier := setupVerifier(t, repo, WithNotificationsEnabled(false))
	ctx := context.Background()
	userID := uuid.New()

	outcome := verifier.Verify(ctx, testParams(userID))
	require.False(t, outcome.Failed())
	assert.Equal(t, StatusNewDevice, outcome.Status)
	assert.False(t, outcome.Notified)
	assert.Empty(t, notifier.Sent())

	// History is still recorded
	records, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestVerifyLocatorFailure(t *testing.T) {
	repo := NewInMemRepository()
	notifier := &notification.MockNotifier{}
	lookupErr := errors.New("database unavailable")
	verifier := NewVerifier(repo, stubLocator{err: lookupErr}, fingerprint.New(), notifier)
	ctx := context.Background()
	userID := uuid.New()

	outcome := verifier.Verify(ctx, testParams(userID))
	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, lookupErr)

	// Nothing recorded, nothing sent
	records, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, notifier.Sent())
}

func TestVerifyNotifierFailure(t *testing.T) {
	repo := NewInMemRepository()
	sendErr := errors.New("smtp unreachable")
	verifier := NewVerifier(repo, stubLocator{location: "Berlin"}, fingerprint.New(), failingNotifier{err: sendErr})
	ctx := context.Background()
	userID := uuid.New()

	outcome := verifier.Verify(ctx, testParams(userID))
	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, sendErr)

	records, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestVerifyInsertConflictTreatedAsKnownDevice(t *testing.T) {
	inner := NewInMemRepository()
	ctx := context.Background()
	userID := uuid.New()

	// The record the concurrent winner inserted
	firstSeen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := inner.Create(ctx, Record{
		UserID:        userID,
		DeviceDetails: "Chrome 120.0 - Mac OS X 10.15",
		Location:      "Berlin",
		LastSeenAt:    firstSeen,
	})
	require.NoError(t, err)

	repo := conflictOnCreateRepository{InMemRepository: inner}
	notifier := &notification.MockNotifier{}
	verifier := NewVerifier(repo, stubLocator{location: "Berlin"}, fingerprint.New(), notifier,
		WithNotificationsEnabled(false))

	outcome := verifier.Verify(ctx, testParams(userID))
	require.False(t, outcome.Failed())
	assert.Equal(t, StatusKnownDevice, outcome.Status)

	records, err := inner.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].LastSeenAt.After(firstSeen))
}
