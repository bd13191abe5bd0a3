package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/measurement"
)

// alertThreshold is the minimum count of measurements strictly above their
// hour-bucket average for the hour to qualify as anomalous. An hour needs
// MORE than this many outliers to appear in the result.
const alertThreshold = 3

// Engine computes derived statistics over the measurement store.
type Engine struct {
	db *sql.DB
}

// NewEngine creates an aggregation engine over the given connection.
func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// AvgDailyTemp computes the average temperature per calendar day for the
// named room.
//
// It selects all measurements with the temperature unit emitted by any
// device located in the room (dedicated sensors as well as actuators with
// an embedded sensor), optionally bounded by an inclusive [fromDate,
// untilDate] timestamp range where either bound may be empty (unbounded).
// Result keys are ISO-8601 date strings; the map is empty when nothing
// matches. Days without measurements are absent, never interpolated.
func (e *Engine) AvgDailyTemp(ctx context.Context, roomName, fromDate, untilDate string) (map[string]float64, error) {
	query := `
		SELECT strftime('%Y-%m-%d', m.ts) AS day, AVG(m.value)
		FROM measurements m
		JOIN devices d ON m.device = d.id
		JOIN rooms r ON d.room = r.id
		WHERE r.name = ? AND m.unit = ?`
	args := []any{roomName, measurement.UnitCelsius}

	if fromDate != "" {
		query += " AND m.ts >= ?"
		args = append(args, fromDate)
	}
	if untilDate != "" {
		query += " AND m.ts <= ?"
		args = append(args, untilDate)
	}
	query += " GROUP BY day"

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying daily temperatures for room %q: %w", roomName, err)
	}
	defer rows.Close()

	averages := make(map[string]float64)
	for rows.Next() {
		var (
			day string
			avg float64
		)
		if err := rows.Scan(&day, &avg); err != nil {
			return nil, fmt.Errorf("scanning daily temperature row: %w", err)
		}
		averages[day] = avg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily temperature rows: %w", err)
	}
	return averages, nil
}

// HumidityAlertHours finds the hours of the given calendar date during
// which the named room recorded anomalously many high humidity readings.
//
// For every observed hour of that date, the average humidity across all
// measurements from the room's humidity sensors in that hour forms the
// local threshold; an hour qualifies when strictly more than three
// individual measurements exceed its own hour average. The comparison is
// against the hour's own bucket, not a daily or global mean, so the
// threshold adapts to diurnal patterns.
//
// The result is the sorted, deduplicated list of qualifying hours [0-23];
// empty when none qualify or no data exists. A room name that does not
// resolve fails with ErrUnknownRoom.
func (e *Engine) HumidityAlertHours(ctx context.Context, roomName, date string) ([]int, error) {
	roomID, err := e.roomIDByName(ctx, roomName)
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT hour FROM (
			SELECT strftime('%H', m.ts) AS hour,
			       m.value,
			       AVG(m.value) OVER (PARTITION BY strftime('%H', m.ts)) AS hour_avg
			FROM measurements m
			JOIN devices d ON m.device = d.id
			WHERE d.room = ? AND d.kind = ? AND m.unit = ? AND date(m.ts) = ?
		)
		WHERE value > hour_avg
		GROUP BY hour
		HAVING COUNT(*) > ?`

	rows, err := e.db.QueryContext(ctx, query,
		roomID, house.KindHumiditySensor, measurement.UnitPercent, date, alertThreshold)
	if err != nil {
		return nil, fmt.Errorf("querying humidity alerts for room %q on %s: %w", roomName, date, err)
	}
	defer rows.Close()

	var hours []int
	for rows.Next() {
		var hour string
		if err := rows.Scan(&hour); err != nil {
			return nil, fmt.Errorf("scanning humidity alert row: %w", err)
		}
		h, err := strconv.Atoi(hour)
		if err != nil {
			return nil, fmt.Errorf("parsing hour %q: %w", hour, err)
		}
		hours = append(hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating humidity alert rows: %w", err)
	}

	sort.Ints(hours)
	return hours, nil
}

// roomIDByName resolves a room name to its storage id.
func (e *Engine) roomIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := e.db.QueryRowContext(ctx,
		"SELECT id FROM rooms WHERE name = ?", name,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %q", ErrUnknownRoom, name)
		}
		return 0, fmt.Errorf("resolving room %q: %w", name, err)
	}
	return id, nil
}
