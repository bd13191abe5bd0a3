package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/smarthouse-core/internal/house"
)

// deviceResponse is a device with its location attached, for listings
// where the room context is not implied by the URL.
type deviceResponse struct {
	*house.Device
	Room  string `json:"room"`
	Floor int    `json:"floor"`
}

// handleListDevices returns all devices with their locations.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	h := s.loadedHouse(w)
	if h == nil {
		return
	}

	devices := make([]deviceResponse, 0)
	for _, floor := range h.Floors() {
		for _, room := range floor.Rooms {
			for _, dev := range room.Devices {
				devices = append(devices, deviceResponse{
					Device: dev,
					Room:   room.Name,
					Floor:  floor.Level,
				})
			}
		}
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleGetDevice returns a single device by id.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := s.repo.FindDeviceByID(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "device not found")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// sensorFromRequest resolves the {id} URL parameter to a measurement-capable
// device. Non-sensors 404: the caller addressed the wrong resource type.
func (s *Server) sensorFromRequest(w http.ResponseWriter, r *http.Request) (*house.Device, bool) {
	dev, err := s.repo.FindDeviceByID(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "device not found")
		return nil, false
	}
	if !dev.IsSensor() {
		writeNotFound(w, "device is not a sensor")
		return nil, false
	}
	return dev, true
}

// actuatorFromRequest resolves the {id} URL parameter to a state-holding
// device. Non-actuators 404.
func (s *Server) actuatorFromRequest(w http.ResponseWriter, r *http.Request) (*house.Device, bool) {
	dev, err := s.repo.FindDeviceByID(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "device not found")
		return nil, false
	}
	if !dev.IsActuator() {
		writeNotFound(w, "device is not an actuator")
		return nil, false
	}
	return dev, true
}
