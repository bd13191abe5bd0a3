package smarthome

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/smarthouse-core/internal/analytics"
	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthouse-core/internal/measurement"
)

// Mirror receives a copy of every appended measurement. Implementations
// must not block: the facade calls this synchronously on the append path.
type Mirror interface {
	WriteMeasurement(deviceID string, value float64, unit string, ts time.Time)
}

// Repository is the persistence facade over the smarthouse store.
//
// All methods are safe for concurrent use; the cached house graph is
// guarded by a read-write mutex while the SQL layer serializes through
// the single-writer connection pool.
type Repository struct {
	db           *database.DB
	logger       *logging.Logger
	loader       *house.Loader
	states       *house.StateRepository
	measurements *measurement.Store
	analytics    *analytics.Engine

	mu     sync.RWMutex
	house  *house.SmartHouse
	mirror Mirror
}

// New creates a Repository over an opened, migrated database.
func New(db *database.DB, logger *logging.Logger) *Repository {
	loader := house.NewLoader(db.DB)
	loader.SetLogger(logger.With("component", "loader"))

	return &Repository{
		db:           db,
		logger:       logger,
		loader:       loader,
		states:       house.NewStateRepository(db.DB),
		measurements: measurement.NewStore(db.DB),
		analytics:    analytics.NewEngine(db.DB),
	}
}

// SetMeasurementMirror installs an optional mirror that receives a copy
// of every measurement appended through the facade. Pass nil to remove.
func (r *Repository) SetMeasurementMirror(m Mirror) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mirror = m
}

// LoadStructure performs the deep load and caches the resulting graph.
// It can be called again to refresh the cache from storage.
func (r *Repository) LoadStructure(ctx context.Context) (*house.SmartHouse, error) {
	h, err := r.loader.LoadStructure(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.house = h
	r.mu.Unlock()

	r.logger.Info("house structure loaded",
		"floors", len(h.Floors()),
		"rooms", len(h.Rooms()),
		"devices", len(h.Devices()),
	)
	return h, nil
}

// House returns the cached house graph, or nil before LoadStructure.
func (r *Repository) House() *house.SmartHouse {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.house
}

// FindDeviceByID resolves a device in the cached graph.
// Fails with house.ErrUnknownDevice when absent or before loading.
func (r *Repository) FindDeviceByID(id string) (*house.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.house == nil {
		return nil, fmt.Errorf("%w: %s", house.ErrUnknownDevice, id)
	}
	dev := r.house.DeviceByID(id)
	if dev == nil {
		return nil, fmt.Errorf("%w: %s", house.ErrUnknownDevice, id)
	}
	return dev, nil
}

// AppendMeasurement records a new measurement timestamped now (UTC) and
// forwards it to the mirror when one is installed.
func (r *Repository) AppendMeasurement(ctx context.Context, deviceID string, value float64, unit string) error {
	return r.AppendMeasurementAt(ctx, deviceID, value, unit, time.Now().UTC())
}

// AppendMeasurementAt records a new measurement with an explicit timestamp.
func (r *Repository) AppendMeasurementAt(ctx context.Context, deviceID string, value float64, unit string, ts time.Time) error {
	if err := r.measurements.AppendAt(ctx, deviceID, value, unit, ts); err != nil {
		return err
	}

	r.mu.RLock()
	mirror := r.mirror
	r.mu.RUnlock()
	if mirror != nil {
		mirror.WriteMeasurement(deviceID, value, unit, ts)
	}
	return nil
}

// LatestMeasurement returns the most recent measurement for a device.
// Fails with measurement.ErrNoMeasurements when the device has none.
func (r *Repository) LatestMeasurement(ctx context.Context, deviceID string) (*measurement.Measurement, error) {
	return r.measurements.Latest(ctx, deviceID)
}

// RecentMeasurements returns up to limit measurements for a device,
// newest first. A limit below 1 returns everything.
func (r *Repository) RecentMeasurements(ctx context.Context, deviceID string, limit int) ([]measurement.Measurement, error) {
	return r.measurements.Recent(ctx, deviceID, limit)
}

// DeleteOldestMeasurement removes the single oldest measurement for a
// device. It is a no-op when the device has none.
func (r *Repository) DeleteOldestMeasurement(ctx context.Context, deviceID string) error {
	return r.measurements.DeleteOldest(ctx, deviceID)
}

// CountMeasurements returns the number of stored measurements for a device.
func (r *Repository) CountMeasurements(ctx context.Context, deviceID string) (int64, error) {
	return r.measurements.Count(ctx, deviceID)
}

// ReadActuatorState reads and decodes the persisted state for a device.
// A device with no state row reads as off.
func (r *Repository) ReadActuatorState(ctx context.Context, deviceID string) (house.ActuatorState, error) {
	raw, _, err := r.states.Get(ctx, deviceID)
	if err != nil {
		return house.ActuatorState{}, err
	}
	return house.DecodeState(raw), nil
}

// WriteActuatorState encodes and persists an actuator state, then updates
// the cached device when the graph holds one with this id. The storage
// write and the cache update are not atomic with respect to concurrent
// readers, but each is individually consistent.
func (r *Repository) WriteActuatorState(ctx context.Context, deviceID string, state house.ActuatorState) error {
	if err := r.states.Put(ctx, deviceID, house.EncodeState(state)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.house != nil {
		if dev := r.house.DeviceByID(deviceID); dev != nil && dev.IsActuator() {
			dev.State = state
		}
	}
	return nil
}

// AvgDailyTemp computes per-day average temperatures for a room, bounded
// by an optional inclusive timestamp range (empty bound = unbounded).
func (r *Repository) AvgDailyTemp(ctx context.Context, roomName, fromDate, untilDate string) (map[string]float64, error) {
	return r.analytics.AvgDailyTemp(ctx, roomName, fromDate, untilDate)
}

// HumidityAlertHours returns the hours of the given date with anomalously
// many high humidity readings in the named room.
// Fails with analytics.ErrUnknownRoom when the room does not exist.
func (r *Repository) HumidityAlertHours(ctx context.Context, roomName, date string) ([]int, error) {
	return r.analytics.HumidityAlertHours(ctx, roomName, date)
}

// HealthCheck verifies the underlying store is reachable.
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// Close releases the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}
