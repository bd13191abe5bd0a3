package smarthome

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/nerrad567/smarthouse-core/migrations"

	"github.com/nerrad567/smarthouse-core/internal/analytics"
	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthouse-core/internal/measurement"
)

// setupRepo opens a migrated temp-file database, seeds a small house, and
// returns a ready facade.
func setupRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	fixtures := `
		INSERT INTO rooms (id, floor, area, name) VALUES
			(1, 1, 25.5, 'Living Room'),
			(2, 2, 6.0, 'Bathroom');

		INSERT INTO devices (id, room, kind, category, supplier, product) VALUES
			('temp-1', 1, 'Temperature Sensor', 'sensor', 'AcmeSense', 'TS-100'),
			('hum-1',  2, 'Humidity Sensor', 'sensor', 'AcmeSense', 'HS-200'),
			('lamp-1', 1, 'Light Bulb', 'actuator', 'Lumina', 'LB-10'),
			('hp-1',   1, 'Heat Pump', 'actuator', 'ThermoCo', 'HP-900');

		INSERT INTO states (device, state) VALUES ('lamp-1', 0.4);
	`
	if _, err := db.Exec(fixtures); err != nil {
		t.Fatalf("seeding fixtures: %v", err)
	}

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
	return New(db, logger)
}

func TestRepositoryLoadStructure(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if repo.House() != nil {
		t.Fatal("house should be nil before loading")
	}

	h, err := repo.LoadStructure(ctx)
	if err != nil {
		t.Fatalf("LoadStructure: %v", err)
	}
	if repo.House() != h {
		t.Error("House() should return the loaded graph")
	}

	if got := len(h.Floors()); got != 2 {
		t.Errorf("floors: got %d, want 2", got)
	}
	if got := len(h.Devices()); got != 4 {
		t.Errorf("devices: got %d, want 4", got)
	}

	lamp := h.DeviceByID("lamp-1")
	want := house.ActuatorState{Mode: house.ModeOnWithLevel, Level: 0.4}
	if lamp.State != want {
		t.Errorf("lamp-1 state: got %+v, want %+v", lamp.State, want)
	}
}

func TestRepositoryFindDeviceByID(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// Before loading, every lookup misses.
	if _, err := repo.FindDeviceByID("temp-1"); !errors.Is(err, house.ErrUnknownDevice) {
		t.Fatalf("before load: got %v, want ErrUnknownDevice", err)
	}

	if _, err := repo.LoadStructure(ctx); err != nil {
		t.Fatalf("LoadStructure: %v", err)
	}

	dev, err := repo.FindDeviceByID("temp-1")
	if err != nil {
		t.Fatalf("FindDeviceByID: %v", err)
	}
	if dev.Kind != "Temperature Sensor" {
		t.Errorf("kind: got %q", dev.Kind)
	}

	if _, err := repo.FindDeviceByID("ghost"); !errors.Is(err, house.ErrUnknownDevice) {
		t.Errorf("unknown id: got %v, want ErrUnknownDevice", err)
	}
}

func TestRepositoryMeasurementFlow(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i, v := range []float64{19.0, 20.0, 21.0} {
		if err := repo.AppendMeasurementAt(ctx, "temp-1", v, measurement.UnitCelsius, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("AppendMeasurementAt: %v", err)
		}
	}

	latest, err := repo.LatestMeasurement(ctx, "temp-1")
	if err != nil {
		t.Fatalf("LatestMeasurement: %v", err)
	}
	if latest.Value != 21.0 {
		t.Errorf("latest: got %v, want 21.0", latest.Value)
	}

	if err := repo.DeleteOldestMeasurement(ctx, "temp-1"); err != nil {
		t.Fatalf("DeleteOldestMeasurement: %v", err)
	}
	n, err := repo.CountMeasurements(ctx, "temp-1")
	if err != nil {
		t.Fatalf("CountMeasurements: %v", err)
	}
	if n != 2 {
		t.Errorf("count: got %d, want 2", n)
	}

	values, err := repo.RecentMeasurements(ctx, "temp-1", 10)
	if err != nil {
		t.Fatalf("RecentMeasurements: %v", err)
	}
	if len(values) != 2 || values[0].Value != 21.0 {
		t.Errorf("recent: got %+v", values)
	}

	if _, err := repo.LatestMeasurement(ctx, "hum-1"); !errors.Is(err, measurement.ErrNoMeasurements) {
		t.Errorf("empty device: got %v, want ErrNoMeasurements", err)
	}
}

// recordingMirror captures mirror calls for assertions.
type recordingMirror struct {
	mu    sync.Mutex
	calls []string
}

func (m *recordingMirror) WriteMeasurement(deviceID string, _ float64, _ string, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, deviceID)
}

func TestRepositoryMeasurementMirror(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	mirror := &recordingMirror{}
	repo.SetMeasurementMirror(mirror)

	if err := repo.AppendMeasurement(ctx, "temp-1", 20.5, measurement.UnitCelsius); err != nil {
		t.Fatalf("AppendMeasurement: %v", err)
	}

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	if len(mirror.calls) != 1 || mirror.calls[0] != "temp-1" {
		t.Errorf("mirror calls: got %v, want [temp-1]", mirror.calls)
	}
}

func TestRepositoryActuatorState(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.LoadStructure(ctx); err != nil {
		t.Fatalf("LoadStructure: %v", err)
	}

	// hp-1 has no state row: reads as off.
	state, err := repo.ReadActuatorState(ctx, "hp-1")
	if err != nil {
		t.Fatalf("ReadActuatorState: %v", err)
	}
	if state.Mode != house.ModeOff {
		t.Errorf("initial state: got %+v, want off", state)
	}

	want := house.ActuatorState{Mode: house.ModeOnWithLevel, Level: 0.8}
	if err := repo.WriteActuatorState(ctx, "hp-1", want); err != nil {
		t.Fatalf("WriteActuatorState: %v", err)
	}

	// Storage and the cached graph both reflect the write.
	state, err = repo.ReadActuatorState(ctx, "hp-1")
	if err != nil {
		t.Fatalf("ReadActuatorState: %v", err)
	}
	if state != want {
		t.Errorf("persisted state: got %+v, want %+v", state, want)
	}
	if dev := repo.House().DeviceByID("hp-1"); dev.State != want {
		t.Errorf("cached state: got %+v, want %+v", dev.State, want)
	}

	// The write survives a full reload.
	if _, err := repo.LoadStructure(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if dev := repo.House().DeviceByID("hp-1"); dev.State != want {
		t.Errorf("state after reload: got %+v, want %+v", dev.State, want)
	}
}

func TestRepositoryAnalytics(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	ts := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	if err := repo.AppendMeasurementAt(ctx, "temp-1", 21.0, measurement.UnitCelsius, ts); err != nil {
		t.Fatalf("AppendMeasurementAt: %v", err)
	}

	averages, err := repo.AvgDailyTemp(ctx, "Living Room", "", "")
	if err != nil {
		t.Fatalf("AvgDailyTemp: %v", err)
	}
	if got := averages["2026-08-20"]; got != 21.0 {
		t.Errorf("average: got %v, want 21.0", got)
	}

	if _, err := repo.HumidityAlertHours(ctx, "Garage", "2026-08-20"); !errors.Is(err, analytics.ErrUnknownRoom) {
		t.Errorf("unknown room: got %v, want ErrUnknownRoom", err)
	}

	hours, err := repo.HumidityAlertHours(ctx, "Bathroom", "2026-08-20")
	if err != nil {
		t.Fatalf("HumidityAlertHours: %v", err)
	}
	if len(hours) != 0 {
		t.Errorf("hours: got %v, want none", hours)
	}
}
