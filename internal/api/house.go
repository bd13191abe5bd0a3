package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/smarthouse-core/internal/house"
)

// roomNameParam extracts the {name} URL parameter. Room names contain
// spaces, so the captured segment may arrive percent-encoded.
func roomNameParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// loadedHouse returns the cached house graph or writes a 500 when the
// structure has not been loaded yet.
func (s *Server) loadedHouse(w http.ResponseWriter) *house.SmartHouse {
	h := s.repo.House()
	if h == nil {
		writeInternalError(w, "house structure not loaded")
		return nil
	}
	return h
}

// handleGetHouse returns a summary of the house structure.
func (s *Server) handleGetHouse(w http.ResponseWriter, _ *http.Request) {
	h := s.loadedHouse(w)
	if h == nil {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"floor_count":  len(h.Floors()),
		"room_count":   len(h.Rooms()),
		"device_count": len(h.Devices()),
		"total_area":   h.TotalArea(),
	})
}

// handleListFloors returns all floors with their rooms and devices.
func (s *Server) handleListFloors(w http.ResponseWriter, _ *http.Request) {
	h := s.loadedHouse(w)
	if h == nil {
		return
	}
	writeJSON(w, http.StatusOK, h.Floors())
}

// handleGetFloor returns a single floor by level.
func (s *Server) handleGetFloor(w http.ResponseWriter, r *http.Request) {
	h := s.loadedHouse(w)
	if h == nil {
		return
	}

	floor, ok := s.floorFromRequest(w, r, h)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, floor)
}

// handleListFloorRooms returns the rooms of a single floor.
func (s *Server) handleListFloorRooms(w http.ResponseWriter, r *http.Request) {
	h := s.loadedHouse(w)
	if h == nil {
		return
	}

	floor, ok := s.floorFromRequest(w, r, h)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, floor.Rooms)
}

// handleGetRoom returns a single room on a floor by name.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	h := s.loadedHouse(w)
	if h == nil {
		return
	}

	floor, ok := s.floorFromRequest(w, r, h)
	if !ok {
		return
	}

	name := roomNameParam(r)
	for _, room := range floor.Rooms {
		if room.Name == name {
			writeJSON(w, http.StatusOK, room)
			return
		}
	}
	writeNotFound(w, "room not found on this floor")
}

// floorFromRequest parses the {level} URL parameter and resolves the floor.
// Writes the error response itself and reports success via the bool.
func (s *Server) floorFromRequest(w http.ResponseWriter, r *http.Request, h *house.SmartHouse) (*house.Floor, bool) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		writeBadRequest(w, "floor level must be an integer")
		return nil, false
	}

	floor := h.FloorByLevel(level)
	if floor == nil {
		writeNotFound(w, "floor not found")
		return nil, false
	}
	return floor, true
}
