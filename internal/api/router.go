package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// House structure
		r.Route("/smarthouse", func(r chi.Router) {
			r.Get("/", s.handleGetHouse)
			r.Get("/floors", s.handleListFloors)
			r.Get("/floors/{level}", s.handleGetFloor)
			r.Get("/floors/{level}/rooms", s.handleListFloorRooms)
			r.Get("/floors/{level}/rooms/{name}", s.handleGetRoom)
		})

		// Device listings
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/{id}", s.handleGetDevice)
		})

		// Sensor measurement operations
		r.Route("/sensors/{id}", func(r chi.Router) {
			r.Get("/current", s.handleGetCurrentMeasurement)
			r.Post("/current", s.handleAppendMeasurement)
			r.Get("/values", s.handleListMeasurements)
			r.Delete("/oldest", s.handleDeleteOldestMeasurement)
		})

		// Actuator state operations
		r.Route("/actuators/{id}", func(r chi.Router) {
			r.Get("/state", s.handleGetActuatorState)
			r.Put("/state", s.handleSetActuatorState)
		})

		// Room statistics
		r.Route("/rooms/{name}/stats", func(r chi.Router) {
			r.Get("/temperature", s.handleRoomTemperatureStats)
			r.Get("/humidity-alerts", s.handleRoomHumidityAlerts)
		})
	})

	return r
}

// handleHealth returns the server health status, including store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := s.repo.HealthCheck(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": s.version,
	})
}
