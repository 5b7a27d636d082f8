package location

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL location repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves the tracked location for a device.
func (r *PostgresRepository) Get(ctx context.Context, deviceID string) (*TrackedLocation, error) {
	query := `
		SELECT device_id, lat, lon, display_name, updated_at
		FROM tracked_locations
		WHERE device_id = $1
	`

	var loc TrackedLocation
	err := r.pool.QueryRow(ctx, query, deviceID).Scan(
		&loc.DeviceID,
		&loc.Lat,
		&loc.Lon,
		&loc.DisplayName,
		&loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// Upsert creates or replaces the tracked location for a device.
func (r *PostgresRepository) Upsert(ctx context.Context, loc *TrackedLocation) error {
	query := `
		INSERT INTO tracked_locations (device_id, lat, lon, display_name, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (device_id) DO UPDATE
		SET lat = EXCLUDED.lat,
		    lon = EXCLUDED.lon,
		    display_name = EXCLUDED.display_name,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		loc.DeviceID, loc.Lat, loc.Lon, loc.DisplayName, loc.UpdatedAt)
	return err
}

// List retrieves all tracked locations.
func (r *PostgresRepository) List(ctx context.Context) ([]*TrackedLocation, error) {
	query := `
		SELECT device_id, lat, lon, display_name, updated_at
		FROM tracked_locations
		ORDER BY device_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TrackedLocation
	for rows.Next() {
		var loc TrackedLocation
		if err := rows.Scan(
			&loc.DeviceID,
			&loc.Lat,
			&loc.Lon,
			&loc.DisplayName,
			&loc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &loc)
	}
	return out, rows.Err()
}

// Delete removes the tracked location for a device.
func (r *PostgresRepository) Delete(ctx context.Context, deviceID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tracked_locations WHERE device_id = $1`, deviceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLocationNotFound
	}
	return nil
}
