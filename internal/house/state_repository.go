package house

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// StateRepository reads and writes the raw encoded actuator state in the
// states table. The encoding itself lives in DecodeState/EncodeState; this
// repository only moves the nullable numeric column.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a SQLite-backed actuator state repository.
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the raw stored state for a device.
//
// The second return value reports whether a state row exists at all: a
// device can have a row holding NULL (off) or no row (state never written),
// and the loader treats those differently only in logging.
func (r *StateRepository) Get(ctx context.Context, deviceID string) (*float64, bool, error) {
	var raw sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		"SELECT state FROM states WHERE device = ?", deviceID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying state for device %s: %w", deviceID, err)
	}
	if !raw.Valid {
		return nil, true, nil
	}
	return &raw.Float64, true, nil
}

// Put upserts the raw state for a device. A nil raw persists NULL (off).
// The write is a single statement, atomic per call.
func (r *StateRepository) Put(ctx context.Context, deviceID string, raw *float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO states (device, state) VALUES (?, ?)
		 ON CONFLICT(device) DO UPDATE SET state = excluded.state`,
		deviceID, nullFloat(raw),
	)
	if err != nil {
		return fmt.Errorf("writing state for device %s: %w", deviceID, err)
	}
	return nil
}

// nullFloat converts a *float64 to sql.NullFloat64 for nullable columns.
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
