package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/smarthouse-core/internal/measurement"
)

// measurementRequest is the body for POST /sensors/{id}/current.
// The timestamp is optional; absent means "now".
type measurementRequest struct {
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// handleGetCurrentMeasurement returns the most recent measurement for a sensor.
func (s *Server) handleGetCurrentMeasurement(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.sensorFromRequest(w, r)
	if !ok {
		return
	}

	m, err := s.repo.LatestMeasurement(r.Context(), dev.ID)
	if err != nil {
		if errors.Is(err, measurement.ErrNoMeasurements) {
			writeNotFound(w, "sensor has no measurements")
			return
		}
		s.logger.Error("reading latest measurement", "device_id", dev.ID, "error", err)
		writeInternalError(w, "failed to read measurement")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleAppendMeasurement records a new measurement for a sensor.
func (s *Server) handleAppendMeasurement(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.sensorFromRequest(w, r)
	if !ok {
		return
	}

	var req measurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Unit == "" {
		writeBadRequest(w, "unit is required")
		return
	}

	ts := time.Now().UTC()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeBadRequest(w, "timestamp must be RFC 3339")
			return
		}
		ts = parsed.UTC()
	}

	if err := s.repo.AppendMeasurementAt(r.Context(), dev.ID, req.Value, req.Unit, ts); err != nil {
		s.logger.Error("appending measurement", "device_id", dev.ID, "error", err)
		writeInternalError(w, "failed to store measurement")
		return
	}

	writeJSON(w, http.StatusCreated, measurement.Measurement{
		DeviceID:  dev.ID,
		Value:     req.Value,
		Unit:      req.Unit,
		Timestamp: ts,
	})
}

// handleListMeasurements returns measurements for a sensor, newest first.
// The optional limit query parameter caps the result size.
func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.sensorFromRequest(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	values, err := s.repo.RecentMeasurements(r.Context(), dev.ID, limit)
	if err != nil {
		s.logger.Error("listing measurements", "device_id", dev.ID, "error", err)
		writeInternalError(w, "failed to read measurements")
		return
	}
	if values == nil {
		values = []measurement.Measurement{}
	}
	writeJSON(w, http.StatusOK, values)
}

// handleDeleteOldestMeasurement removes the single oldest measurement for a
// sensor. Deleting from an empty history is a no-op, not an error.
func (s *Server) handleDeleteOldestMeasurement(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.sensorFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.repo.DeleteOldestMeasurement(r.Context(), dev.ID); err != nil {
		s.logger.Error("deleting oldest measurement", "device_id", dev.ID, "error", err)
		writeInternalError(w, "failed to delete measurement")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
