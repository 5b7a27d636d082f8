package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of Store. Each save upserts
// the whole jsonb record in one statement, so readers always see either the
// previous or the new record, never a mix.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL snapshot store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save replaces the record for the device.
func (s *PostgresStore) Save(ctx context.Context, deviceID string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO uv_snapshots (record_key, device_id, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (record_key) DO UPDATE
		SET data = EXCLUDED.data, updated_at = now()
	`

	_, err = s.pool.Exec(ctx, query, recordKey(deviceID), deviceID, data)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Load returns the last-written record, or Default() if none exists.
func (s *PostgresStore) Load(ctx context.Context, deviceID string) (Snapshot, error) {
	query := `SELECT data FROM uv_snapshots WHERE record_key = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, query, recordKey(deviceID)).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Default(), fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// recordKey builds the well-known per-device storage key.
func recordKey(deviceID string) string {
	return Key + ":" + deviceID
}
