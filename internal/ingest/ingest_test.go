package ingest

import (
	"testing"
	"time"
)

func TestDeviceIDFromTopic(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		want    string
		wantErr bool
	}{
		{"valid", "smarthouse/sensor/temp-1/measurement", "temp-1", false},
		{"uuid device id", "smarthouse/sensor/8d4e4c6e-8e1f-4b0a/measurement", "8d4e4c6e-8e1f-4b0a", false},
		{"wrong prefix", "otherhouse/sensor/temp-1/measurement", "", true},
		{"missing suffix", "smarthouse/sensor/temp-1/state", "", true},
		{"empty device id", "smarthouse/sensor//measurement", "", true},
		{"extra level", "smarthouse/sensor/a/b/measurement", "", true},
		{"status topic", "smarthouse/system/status", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := deviceIDFromTopic(tt.topic, "smarthouse")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("got %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePayload(t *testing.T) {
	value, unit, ts, err := parsePayload([]byte(`{"value": 21.5, "unit": "°C", "ts": "2026-08-20T10:00:00Z"}`))
	if err != nil {
		t.Fatalf("parsePayload: %v", err)
	}
	if value != 21.5 || unit != "°C" {
		t.Errorf("got value=%v unit=%q", value, unit)
	}
	want := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("ts: got %v, want %v", ts, want)
	}
}

func TestParsePayloadDefaultsTimestamp(t *testing.T) {
	before := time.Now().UTC()
	_, _, ts, err := parsePayload([]byte(`{"value": 55, "unit": "%"}`))
	if err != nil {
		t.Fatalf("parsePayload: %v", err)
	}
	if ts.Before(before) || ts.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("ts not near now: %v", ts)
	}
}

func TestParsePayloadRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"not json":      `value=21.5`,
		"missing unit":  `{"value": 21.5}`,
		"bad timestamp": `{"value": 21.5, "unit": "°C", "ts": "yesterday"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, _, err := parsePayload([]byte(payload)); err == nil {
				t.Error("want error")
			}
		})
	}
}
