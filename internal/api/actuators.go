package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/smarthouse-core/internal/house"
)

// stateRequest is the body for PUT /actuators/{id}/state.
type stateRequest struct {
	Mode  string   `json:"mode"`
	Level *float64 `json:"level,omitempty"`
}

// stateResponse pairs the device id with its state for both reads and writes.
type stateResponse struct {
	DeviceID string  `json:"device_id"`
	Mode     string  `json:"mode"`
	Level    float64 `json:"level,omitempty"`
}

// handleGetActuatorState returns the persisted state of an actuator.
func (s *Server) handleGetActuatorState(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.actuatorFromRequest(w, r)
	if !ok {
		return
	}

	state, err := s.repo.ReadActuatorState(r.Context(), dev.ID)
	if err != nil {
		s.logger.Error("reading actuator state", "device_id", dev.ID, "error", err)
		writeInternalError(w, "failed to read state")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		DeviceID: dev.ID,
		Mode:     state.Mode.String(),
		Level:    state.Level,
	})
}

// handleSetActuatorState persists a new actuator state.
//
// Any state may replace any other state; there are no transition rules.
// on_with_level requires a level; the other modes reject one.
func (s *Server) handleSetActuatorState(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.actuatorFromRequest(w, r)
	if !ok {
		return
	}

	var req stateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	state, errMsg := stateFromRequest(req)
	if errMsg != "" {
		writeBadRequest(w, errMsg)
		return
	}

	if err := s.repo.WriteActuatorState(r.Context(), dev.ID, state); err != nil {
		s.logger.Error("writing actuator state", "device_id", dev.ID, "error", err)
		writeInternalError(w, "failed to write state")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		DeviceID: dev.ID,
		Mode:     state.Mode.String(),
		Level:    state.Level,
	})
}

// stateFromRequest validates and converts a state request body.
// Returns a non-empty message describing the first problem found.
func stateFromRequest(req stateRequest) (house.ActuatorState, string) {
	switch req.Mode {
	case "off":
		if req.Level != nil {
			return house.ActuatorState{}, "level is not allowed for mode off"
		}
		return house.ActuatorState{Mode: house.ModeOff}, ""
	case "on":
		if req.Level != nil {
			return house.ActuatorState{}, "level is not allowed for mode on; use on_with_level"
		}
		return house.ActuatorState{Mode: house.ModeOn}, ""
	case "on_with_level":
		if req.Level == nil {
			return house.ActuatorState{}, "level is required for mode on_with_level"
		}
		return house.ActuatorState{Mode: house.ModeOnWithLevel, Level: *req.Level}, ""
	default:
		return house.ActuatorState{}, "mode must be one of off, on, on_with_level"
	}
}
