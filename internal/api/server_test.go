package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/nerrad567/smarthouse-core/migrations"

	"github.com/nerrad567/smarthouse-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthouse-core/internal/measurement"
	"github.com/nerrad567/smarthouse-core/internal/smarthome"
)

// setupServer builds a server over a migrated, seeded repository and
// returns its router for httptest requests.
func setupServer(t *testing.T) http.Handler {
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
			('lamp-1', 1, 'Light Bulb', 'actuator', 'Lumina', 'LB-10'),
			('hp-1',   2, 'Heat Pump', 'actuator', 'ThermoCo', 'HP-900');
	`
	if _, err := db.Exec(fixtures); err != nil {
		t.Fatalf("seeding fixtures: %v", err)
	}

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
	repo := smarthome.New(db, logger)
	if _, err := repo.LoadStructure(ctx); err != nil {
		t.Fatalf("loading structure: %v", err)
	}

	server, err := New(Deps{
		Config:  config.APIConfig{Host: "127.0.0.1", Port: 8080},
		Logger:  logger,
		Repo:    repo,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return server.buildRouter()
}

// doRequest performs a request against the router and decodes the JSON body.
func doRequest(t *testing.T, router http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()

	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	decoded := make(map[string]any)
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			// Some endpoints return arrays; callers that care decode themselves.
			decoded = nil
		}
	}
	return rec.Code, decoded
}

func TestHealthEndpoint(t *testing.T) {
	router := setupServer(t)

	code, body := doRequest(t, router, http.MethodGet, "/api/v1/health", "")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %v", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version field: got %v", body["version"])
	}
}

func TestGetHouseSummary(t *testing.T) {
	router := setupServer(t)

	code, body := doRequest(t, router, http.MethodGet, "/api/v1/smarthouse", "")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if got := body["floor_count"].(float64); got != 2 {
		t.Errorf("floor_count: got %v, want 2", got)
	}
	if got := body["room_count"].(float64); got != 2 {
		t.Errorf("room_count: got %v, want 2", got)
	}
	if got := body["device_count"].(float64); got != 3 {
		t.Errorf("device_count: got %v, want 3", got)
	}
	if got := body["total_area"].(float64); got != 31.5 {
		t.Errorf("total_area: got %v, want 31.5", got)
	}
}

func TestFloorEndpoints(t *testing.T) {
	router := setupServer(t)

	code, _ := doRequest(t, router, http.MethodGet, "/api/v1/smarthouse/floors/1", "")
	if code != http.StatusOK {
		t.Errorf("existing floor: got %d, want 200", code)
	}

	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/smarthouse/floors/9", "")
	if code != http.StatusNotFound {
		t.Errorf("missing floor: got %d, want 404", code)
	}

	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/smarthouse/floors/abc", "")
	if code != http.StatusBadRequest {
		t.Errorf("non-numeric floor: got %d, want 400", code)
	}

	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/smarthouse/floors/2/rooms/Bathroom", "")
	if code != http.StatusOK {
		t.Errorf("existing room: got %d, want 200", code)
	}

	// Living Room exists, but not on floor 2.
	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/smarthouse/floors/2/rooms/Living%20Room", "")
	if code != http.StatusNotFound {
		t.Errorf("room on wrong floor: got %d, want 404", code)
	}
}

func TestDeviceEndpoints(t *testing.T) {
	router := setupServer(t)

	code, body := doRequest(t, router, http.MethodGet, "/api/v1/devices/hp-1", "")
	if code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", code)
	}
	if body["kind"] != "Heat Pump" {
		t.Errorf("kind: got %v", body["kind"])
	}

	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/devices/ghost", "")
	if code != http.StatusNotFound {
		t.Errorf("missing device: got %d, want 404", code)
	}
}

func TestSensorMeasurementEndpoints(t *testing.T) {
	router := setupServer(t)

	// No measurements yet.
	code, _ := doRequest(t, router, http.MethodGet, "/api/v1/sensors/temp-1/current", "")
	if code != http.StatusNotFound {
		t.Errorf("empty history: got %d, want 404", code)
	}

	// Record one.
	code, body := doRequest(t, router, http.MethodPost, "/api/v1/sensors/temp-1/current",
		`{"value": 21.5, "unit": "°C"}`)
	if code != http.StatusCreated {
		t.Fatalf("append: got %d, want 201", code)
	}
	if body["value"].(float64) != 21.5 {
		t.Errorf("appended value: got %v", body["value"])
	}

	code, body = doRequest(t, router, http.MethodGet, "/api/v1/sensors/temp-1/current", "")
	if code != http.StatusOK {
		t.Fatalf("current: got %d, want 200", code)
	}
	if body["value"].(float64) != 21.5 {
		t.Errorf("current value: got %v", body["value"])
	}

	// A missing unit is a client error.
	code, _ = doRequest(t, router, http.MethodPost, "/api/v1/sensors/temp-1/current",
		`{"value": 21.5}`)
	if code != http.StatusBadRequest {
		t.Errorf("missing unit: got %d, want 400", code)
	}

	// Actuator-only devices have no measurement endpoints.
	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/sensors/lamp-1/current", "")
	if code != http.StatusNotFound {
		t.Errorf("non-sensor: got %d, want 404", code)
	}

	// The heat pump also senses, so its history is addressable.
	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/sensors/hp-1/values", "")
	if code != http.StatusOK {
		t.Errorf("heat pump values: got %d, want 200", code)
	}

	// Deleting the only measurement, then deleting from empty history.
	code, _ = doRequest(t, router, http.MethodDelete, "/api/v1/sensors/temp-1/oldest", "")
	if code != http.StatusNoContent {
		t.Errorf("delete oldest: got %d, want 204", code)
	}
	code, _ = doRequest(t, router, http.MethodDelete, "/api/v1/sensors/temp-1/oldest", "")
	if code != http.StatusNoContent {
		t.Errorf("delete from empty: got %d, want 204", code)
	}
}

func TestListMeasurementsLimit(t *testing.T) {
	router := setupServer(t)

	for i := 0; i < 5; i++ {
		ts := time.Date(2026, 8, 20, 10, i, 0, 0, time.UTC).Format(time.RFC3339)
		code, _ := doRequest(t, router, http.MethodPost, "/api/v1/sensors/temp-1/current",
			`{"value": 20, "unit": "°C", "timestamp": "`+ts+`"}`)
		if code != http.StatusCreated {
			t.Fatalf("append %d: got %d, want 201", i, code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensors/temp-1/values?limit=3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var values []measurement.Measurement
	if err := json.Unmarshal(rec.Body.Bytes(), &values); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(values) != 3 {
		t.Errorf("limited values: got %d, want 3", len(values))
	}

	code, _ := doRequest(t, router, http.MethodGet, "/api/v1/sensors/temp-1/values?limit=-1", "")
	if code != http.StatusBadRequest {
		t.Errorf("negative limit: got %d, want 400", code)
	}
}

func TestActuatorStateEndpoints(t *testing.T) {
	router := setupServer(t)

	// Default state is off.
	code, body := doRequest(t, router, http.MethodGet, "/api/v1/actuators/lamp-1/state", "")
	if code != http.StatusOK {
		t.Fatalf("get state: got %d, want 200", code)
	}
	if body["mode"] != "off" {
		t.Errorf("initial mode: got %v, want off", body["mode"])
	}

	code, body = doRequest(t, router, http.MethodPut, "/api/v1/actuators/lamp-1/state",
		`{"mode": "on_with_level", "level": 0.6}`)
	if code != http.StatusOK {
		t.Fatalf("put state: got %d, want 200", code)
	}
	if body["mode"] != "on_with_level" || body["level"].(float64) != 0.6 {
		t.Errorf("written state: got %v", body)
	}

	code, body = doRequest(t, router, http.MethodGet, "/api/v1/actuators/lamp-1/state", "")
	if code != http.StatusOK {
		t.Fatalf("get state: got %d, want 200", code)
	}
	if body["mode"] != "on_with_level" {
		t.Errorf("mode after write: got %v", body["mode"])
	}

	// Validation failures.
	code, _ = doRequest(t, router, http.MethodPut, "/api/v1/actuators/lamp-1/state",
		`{"mode": "on_with_level"}`)
	if code != http.StatusBadRequest {
		t.Errorf("missing level: got %d, want 400", code)
	}
	code, _ = doRequest(t, router, http.MethodPut, "/api/v1/actuators/lamp-1/state",
		`{"mode": "on", "level": 0.5}`)
	if code != http.StatusBadRequest {
		t.Errorf("level with plain on: got %d, want 400", code)
	}
	code, _ = doRequest(t, router, http.MethodPut, "/api/v1/actuators/lamp-1/state",
		`{"mode": "dimmed"}`)
	if code != http.StatusBadRequest {
		t.Errorf("unknown mode: got %d, want 400", code)
	}

	// Sensors have no state endpoints.
	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/actuators/temp-1/state", "")
	if code != http.StatusNotFound {
		t.Errorf("non-actuator: got %d, want 404", code)
	}
}

func TestStatsEndpoints(t *testing.T) {
	router := setupServer(t)

	code, body := doRequest(t, router, http.MethodGet, "/api/v1/rooms/Living%20Room/stats/temperature", "")
	if code != http.StatusOK {
		t.Fatalf("temperature stats: got %d, want 200", code)
	}
	if body["room"] != "Living Room" {
		t.Errorf("room field: got %v", body["room"])
	}

	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/rooms/Bathroom/stats/humidity-alerts?date=2026-08-20", "")
	if code != http.StatusOK {
		t.Errorf("humidity alerts: got %d, want 200", code)
	}

	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/rooms/Bathroom/stats/humidity-alerts", "")
	if code != http.StatusBadRequest {
		t.Errorf("missing date: got %d, want 400", code)
	}

	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/rooms/Garage/stats/humidity-alerts?date=2026-08-20", "")
	if code != http.StatusNotFound {
		t.Errorf("unknown room: got %d, want 404", code)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New should fail without logger and repository")
	}
}
