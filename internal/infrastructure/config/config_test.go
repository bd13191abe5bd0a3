package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// A minimal file leaves everything else at defaults.
	path := writeConfig(t, "database:\n  path: /tmp/test.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("database path: got %q", cfg.Database.Path)
	}
	if !cfg.Database.WALMode {
		t.Error("wal_mode should default to true")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("api port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.MQTT.Enabled {
		t.Error("mqtt should default to disabled")
	}
	if cfg.MQTT.TopicPrefix != "smarthouse" {
		t.Errorf("topic prefix: got %q", cfg.MQTT.TopicPrefix)
	}
	if cfg.InfluxDB.Enabled {
		t.Error("influxdb should default to disabled")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /data/house.db
  wal_mode: false
  busy_timeout: 10

api:
  host: 127.0.0.1
  port: 9090

mqtt:
  enabled: true
  broker:
    host: broker.local
    port: 8883
    tls: true
    client_id: house-1
  auth:
    username: ingest
    password: secret
  qos: 2
  topic_prefix: home

logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.BusyTimeout != 10 || cfg.Database.WALMode {
		t.Errorf("database: %+v", cfg.Database)
	}
	if cfg.API.Host != "127.0.0.1" || cfg.API.Port != 9090 {
		t.Errorf("api: %+v", cfg.API)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.QoS != 2 {
		t.Errorf("mqtt: %+v", cfg.MQTT)
	}
	if cfg.MQTT.TopicPrefix != "home" {
		t.Errorf("topic prefix: got %q", cfg.MQTT.TopicPrefix)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SMARTHOUSE_DATABASE_PATH", "/override/house.db")
	t.Setenv("SMARTHOUSE_API_PORT", "9999")
	t.Setenv("SMARTHOUSE_LOG_LEVEL", "debug")

	path := writeConfig(t, "database:\n  path: /tmp/test.db\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/override/house.db" {
		t.Errorf("database path: got %q", cfg.Database.Path)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("api port: got %d", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level: got %q", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg := valid()
	cfg.Database.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty database path should fail")
	}

	cfg = valid()
	cfg.API.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 should fail")
	}

	cfg = valid()
	cfg.API.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port above 65535 should fail")
	}

	cfg = valid()
	cfg.MQTT.Enabled = true
	cfg.MQTT.QoS = 3
	if err := cfg.Validate(); err == nil {
		t.Error("qos 3 should fail when mqtt enabled")
	}

	cfg = valid()
	cfg.MQTT.QoS = 3
	if err := cfg.Validate(); err != nil {
		t.Errorf("qos is not checked while mqtt is disabled: %v", err)
	}

	cfg = valid()
	cfg.InfluxDB.Enabled = true
	cfg.InfluxDB.Org = ""
	if err := cfg.Validate(); err == nil {
		t.Error("enabled influxdb without org should fail")
	}

	cfg = valid()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log level should fail")
	}
}
