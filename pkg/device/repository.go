package device

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Record is one known (user, device signature, location) tuple. For a given
// user at most one Record exists per (DeviceDetails, Location) pair; the pair
// is the natural key. Records are refreshed on every matching login and never
// deleted.
type Record struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	DeviceDetails string    `json:"device_details"`
	Location      string    `json:"location"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

var (
	// ErrRecordNotFound is returned when no record matches the lookup key.
	ErrRecordNotFound = errors.New("device record not found")
	// ErrDuplicateRecord is returned when an insert collides with an
	// existing record for the same (user, device details, location) key.
	ErrDuplicateRecord = errors.New("device record already exists")
)

// Repository is the system of record for device history. Implementations
// must guarantee that concurrent creates for the same natural key do not
// both succeed; the loser receives ErrDuplicateRecord. Last-writer-wins is
// acceptable for LastSeenAt.
type Repository interface {
	// FindByUserID returns all records for a user. History per user is
	// small; callers scan linearly.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Record, error)
	// Create inserts a new record. Returns ErrDuplicateRecord if a record
	// with the same (user, device details, location) key exists.
	Create(ctx context.Context, record Record) (Record, error)
	// RefreshLastSeen updates LastSeenAt on the record with the given
	// natural key. Returns ErrRecordNotFound if no such record exists.
	RefreshLastSeen(ctx context.Context, userID uuid.UUID, deviceDetails, location string, lastSeen time.Time) (Record, error)
}
