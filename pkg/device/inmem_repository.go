package device

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository implements Repository using an in-memory map. All data is
// lost when the process stops; intended for development and tests.
type InMemRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID][]Record
}

// NewInMemRepository creates a new in-memory device history repository.
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		records: make(map[uuid.UUID][]Record),
	}
}

// FindByUserID returns all records for a user.
func (r *InMemRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.records[userID]
	records := make([]Record, len(stored))
	copy(records, stored)

	slog.Debug("Found device records", "userID", userID, "count", len(records))
	return records, nil
}

// Create inserts a new record. The natural-key check runs inside the
// critical section, so concurrent creates for the same key cannot both
// succeed.
func (r *InMemRepository) Create(ctx context.Context, record Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records[record.UserID] {
		if existing.DeviceDetails == record.DeviceDetails && existing.Location == record.Location {
			slog.Debug("Device record already exists", "userID", record.UserID, "deviceDetails", record.DeviceDetails, "location", record.Location)
			return Record{}, ErrDuplicateRecord
		}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	r.records[record.UserID] = append(r.records[record.UserID], record)

	slog.Debug("Device record created", "userID", record.UserID, "deviceDetails", record.DeviceDetails, "location", record.Location)
	return record, nil
}

// RefreshLastSeen updates LastSeenAt on the record matching the natural key.
func (r *InMemRepository) RefreshLastSeen(ctx context.Context, userID uuid.UUID, deviceDetails, location string, lastSeen time.Time) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.records[userID]
	for i, existing := range stored {
		if existing.DeviceDetails == deviceDetails && existing.Location == location {
			stored[i].LastSeenAt = lastSeen
			return stored[i], nil
		}
	}

	return Record{}, ErrRecordNotFound
}
