package measurement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Measurement units used across the module.
const (
	UnitCelsius = "°C"
	UnitPercent = "%"
)

// Measurement is an immutable sensor reading.
type Measurement struct {
	// DeviceID references the producing device. This is a back-reference,
	// not an ownership edge: deleting a device does not cascade here.
	DeviceID string `json:"device_id"`

	// Value is the measured value.
	Value float64 `json:"value"`

	// Unit is the short unit string, e.g. "°C" or "%".
	Unit string `json:"unit"`

	// Timestamp is the measurement time (UTC).
	Timestamp time.Time `json:"timestamp"`
}

// Store persists measurements in the measurements table.
type Store struct {
	db *sql.DB
}

// NewStore creates a SQLite-backed measurement store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts a new measurement timestamped now (UTC).
//
// No foreign-key existence check is performed; a measurement for an
// unknown device id is accepted at this layer.
func (s *Store) Append(ctx context.Context, deviceID string, value float64, unit string) error {
	return s.AppendAt(ctx, deviceID, value, unit, time.Now().UTC())
}

// AppendAt inserts a new measurement with an explicit timestamp.
// Used by ingest paths that carry device-side timestamps.
func (s *Store) AppendAt(ctx context.Context, deviceID string, value float64, unit string, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO measurements (device, value, unit, ts) VALUES (?, ?, ?, ?)",
		deviceID, value, unit, ts.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting measurement for device %s: %w", deviceID, err)
	}
	return nil
}

// Latest returns the most recent measurement for a device.
//
// Rows sharing the maximum timestamp are broken by insertion order
// (rowid), so the result is deterministic for a given storage state.
// Returns ErrNoMeasurements when the device has no rows.
func (s *Store) Latest(ctx context.Context, deviceID string) (*Measurement, error) {
	var (
		m     Measurement
		rawTS string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT device, value, unit, ts FROM measurements
		 WHERE device = ?
		 ORDER BY ts DESC, rowid DESC
		 LIMIT 1`,
		deviceID,
	).Scan(&m.DeviceID, &m.Value, &m.Unit, &rawTS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoMeasurements
		}
		return nil, fmt.Errorf("querying latest measurement for device %s: %w", deviceID, err)
	}

	m.Timestamp, err = parseTimestamp(rawTS)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Recent returns up to limit measurements for a device, newest first.
// A limit below 1 returns everything.
func (s *Store) Recent(ctx context.Context, deviceID string, limit int) ([]Measurement, error) {
	query := `SELECT device, value, unit, ts FROM measurements
		 WHERE device = ?
		 ORDER BY ts DESC, rowid DESC`
	args := []any{deviceID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying measurements for device %s: %w", deviceID, err)
	}
	defer rows.Close()

	var result []Measurement
	for rows.Next() {
		var (
			m     Measurement
			rawTS string
		)
		if err := rows.Scan(&m.DeviceID, &m.Value, &m.Unit, &rawTS); err != nil {
			return nil, fmt.Errorf("scanning measurement row: %w", err)
		}
		m.Timestamp, err = parseTimestamp(rawTS)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating measurement rows: %w", err)
	}
	return result, nil
}

// DeleteOldest removes exactly one measurement: the one with the minimum
// timestamp for the device, insertion order breaking ties. It is a no-op
// when the device has no measurements, and never removes more than one row.
func (s *Store) DeleteOldest(ctx context.Context, deviceID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM measurements
		 WHERE rowid IN (
		   SELECT rowid FROM measurements
		   WHERE device = ?
		   ORDER BY ts ASC, rowid ASC
		   LIMIT 1
		 )`,
		deviceID,
	)
	if err != nil {
		return fmt.Errorf("deleting oldest measurement for device %s: %w", deviceID, err)
	}
	return nil
}

// Count returns the number of measurements stored for a device.
func (s *Store) Count(ctx context.Context, deviceID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM measurements WHERE device = ?", deviceID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting measurements for device %s: %w", deviceID, err)
	}
	return n, nil
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return ts, nil
	}

	// SQLite's datetime('now') format, for rows written outside this store.
	fallback, fallbackErr := time.Parse("2006-01-02 15:04:05", value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing measurement timestamp %q: %w", value, err)
}
