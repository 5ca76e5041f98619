package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the repository can
// run inside or outside a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL. It relies on a
// unique index on (user_id, device_details, location):
//
//	CREATE TABLE device_record (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    user_id UUID NOT NULL,
//	    device_details TEXT NOT NULL,
//	    location TEXT NOT NULL,
//	    last_seen_at TIMESTAMPTZ NOT NULL,
//	    UNIQUE (user_id, device_details, location)
//	);
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL device history repository.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByUserID returns all records for a user.
func (r *PostgresRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]Record, error) {
	query := `
		SELECT id, user_id, device_details, location, last_seen_at
		FROM device_record
		WHERE user_id = $1
		ORDER BY last_seen_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.DeviceDetails, &rec.Location, &rec.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan device record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read device records: %w", err)
	}
	return records, nil
}

// Create inserts a new record. The unique index arbitrates concurrent
// inserts for the same natural key; the loser gets ErrDuplicateRecord.
func (r *PostgresRepository) Create(ctx context.Context, record Record) (Record, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	query := `
		INSERT INTO device_record (id, user_id, device_details, location, last_seen_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, device_details, location) DO NOTHING
		RETURNING id, user_id, device_details, location, last_seen_at
	`
	var created Record
	err := r.db.QueryRow(ctx, query,
		record.ID, record.UserID, record.DeviceDetails, record.Location, record.LastSeenAt,
	).Scan(&created.ID, &created.UserID, &created.DeviceDetails, &created.Location, &created.LastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrDuplicateRecord
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to create device record: %w", err)
	}
	return created, nil
}

// RefreshLastSeen updates LastSeenAt on the record matching the natural key.
func (r *PostgresRepository) RefreshLastSeen(ctx context.Context, userID uuid.UUID, deviceDetails, location string, lastSeen time.Time) (Record, error) {
	query := `
		UPDATE device_record
		SET last_seen_at = $4
		WHERE user_id = $1 AND device_details = $2 AND location = $3
		RETURNING id, user_id, device_details, location, last_seen_at
	`
	var updated Record
	err := r.db.QueryRow(ctx, query, userID, deviceDetails, location, lastSeen).
		Scan(&updated.ID, &updated.UserID, &updated.DeviceDetails, &updated.Location, &updated.LastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to refresh device record: %w", err)
	}
	return updated, nil
}
