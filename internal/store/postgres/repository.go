package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fleetmon/fleetmon/internal/store"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping fleet db: %w", err)
	}
	return nil
}

func (r *Repository) CreateDevice(ctx context.Context, in store.CreateDeviceInput) (store.Device, error) {
	query := `
INSERT INTO devices (name, location, is_active)
VALUES ($1, $2, $3)
RETURNING id`

	device := store.Device{
		Name:     in.Name,
		Location: in.Location,
		IsActive: in.IsActive,
	}
	if err := r.db.QueryRowContext(ctx, query, in.Name, in.Location, in.IsActive).Scan(&device.ID); err != nil {
		return store.Device{}, fmt.Errorf("create device: %w", err)
	}
	return device, nil
}

func (r *Repository) GetDevice(ctx context.Context, deviceID int64) (store.Device, error) {
	query := `
SELECT id, name, location, is_active
FROM devices
WHERE id = $1`

	var device store.Device
	if err := r.db.QueryRowContext(ctx, query, deviceID).Scan(
		&device.ID,
		&device.Name,
		&device.Location,
		&device.IsActive,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Device{}, store.ErrNotFound
		}
		return store.Device{}, fmt.Errorf("get device: %w", err)
	}
	return device, nil
}

func (r *Repository) ListDevices(ctx context.Context, skip, limit int) ([]store.Device, error) {
	query := `
SELECT id, name, location, is_active
FROM devices
ORDER BY id ASC
OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	devices := make([]store.Device, 0)
	for rows.Next() {
		var device store.Device
		if err := rows.Scan(&device.ID, &device.Name, &device.Location, &device.IsActive); err != nil {
			return nil, fmt.Errorf("scan device row: %w", err)
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate device rows: %w", err)
	}
	return devices, nil
}

func (r *Repository) UpdateDevice(ctx context.Context, deviceID int64, in store.CreateDeviceInput) (store.Device, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE devices
SET name = $2, location = $3, is_active = $4
WHERE id = $1`, deviceID, in.Name, in.Location, in.IsActive)
	if err != nil {
		return store.Device{}, fmt.Errorf("update device: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return store.Device{}, fmt.Errorf("update device rows affected: %w", err)
	}
	if rows == 0 {
		return store.Device{}, store.ErrNotFound
	}
	return store.Device{
		ID:       deviceID,
		Name:     in.Name,
		Location: in.Location,
		IsActive: in.IsActive,
	}, nil
}

func (r *Repository) DeleteDevice(ctx context.Context, deviceID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
DELETE FROM devices
WHERE id = $1`, deviceID)
	if err != nil {
		return false, fmt.Errorf("delete device: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete device rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *Repository) CreateReading(ctx context.Context, in store.CreateReadingInput) (store.Reading, error) {
	timestamp := in.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	query := `
INSERT INTO readings (device_id, temperature, humidity, battery_level, timestamp)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	reading := store.Reading{
		DeviceID:     in.DeviceID,
		Temperature:  in.Temperature,
		Humidity:     in.Humidity,
		BatteryLevel: in.BatteryLevel,
		Timestamp:    timestamp,
	}
	if err := r.db.QueryRowContext(ctx, query, in.DeviceID, in.Temperature, in.Humidity, in.BatteryLevel, timestamp).Scan(&reading.ID); err != nil {
		return store.Reading{}, fmt.Errorf("create reading: %w", err)
	}
	return reading, nil
}

func (r *Repository) GetReading(ctx context.Context, readingID int64) (store.Reading, error) {
	query := `
SELECT id, device_id, temperature, humidity, battery_level, timestamp
FROM readings
WHERE id = $1`

	var reading store.Reading
	if err := r.db.QueryRowContext(ctx, query, readingID).Scan(
		&reading.ID,
		&reading.DeviceID,
		&reading.Temperature,
		&reading.Humidity,
		&reading.BatteryLevel,
		&reading.Timestamp,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Reading{}, store.ErrNotFound
		}
		return store.Reading{}, fmt.Errorf("get reading: %w", err)
	}
	return reading, nil
}

func (r *Repository) ListDeviceReadings(ctx context.Context, deviceID int64, limit int) ([]store.Reading, error) {
	query := `
SELECT id, device_id, temperature, humidity, battery_level, timestamp
FROM readings
WHERE device_id = $1
ORDER BY timestamp DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list device readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanReadings(rows)
}

func (r *Repository) ListReadingsBefore(ctx context.Context, cutoff time.Time, limit int) ([]store.Reading, error) {
	query := `
SELECT id, device_id, temperature, humidity, battery_level, timestamp
FROM readings
WHERE timestamp < $1
ORDER BY id ASC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list readings before cutoff: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanReadings(rows)
}

// DeleteReadingsThrough removes readings older than cutoff with id <= maxID.
// The id bound makes the delete safe to run after an archival batch: rows
// ingested between the listing and the delete survive.
func (r *Repository) DeleteReadingsThrough(ctx context.Context, cutoff time.Time, maxID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
DELETE FROM readings
WHERE timestamp < $1 AND id <= $2`, cutoff, maxID)
	if err != nil {
		return 0, fmt.Errorf("delete archived readings: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete archived readings rows affected: %w", err)
	}
	return rows, nil
}

func scanReadings(rows *sql.Rows) ([]store.Reading, error) {
	readings := make([]store.Reading, 0)
	for rows.Next() {
		var reading store.Reading
		if err := rows.Scan(
			&reading.ID,
			&reading.DeviceID,
			&reading.Temperature,
			&reading.Humidity,
			&reading.BatteryLevel,
			&reading.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan reading row: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reading rows: %w", err)
	}
	return readings, nil
}
