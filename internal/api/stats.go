package api

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/nerrad567/smarthouse-core/internal/analytics"
)

// datePattern matches the ISO-8601 calendar date the stats queries expect.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// handleRoomTemperatureStats returns per-day average temperatures for a room.
//
// The optional from/until query parameters bound the range (inclusive);
// either may be omitted. An unknown room yields an empty result, matching
// the underlying query: there is simply nothing to average.
func (s *Server) handleRoomTemperatureStats(w http.ResponseWriter, r *http.Request) {
	roomName := roomNameParam(r)
	from := r.URL.Query().Get("from")
	until := r.URL.Query().Get("until")

	averages, err := s.repo.AvgDailyTemp(r.Context(), roomName, from, until)
	if err != nil {
		s.logger.Error("computing temperature stats", "room", roomName, "error", err)
		writeInternalError(w, "failed to compute statistics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room":     roomName,
		"averages": averages,
	})
}

// handleRoomHumidityAlerts returns the hours of a date with anomalously
// many high humidity readings in a room.
func (s *Server) handleRoomHumidityAlerts(w http.ResponseWriter, r *http.Request) {
	roomName := roomNameParam(r)

	date := r.URL.Query().Get("date")
	if !datePattern.MatchString(date) {
		writeBadRequest(w, "date query parameter must be YYYY-MM-DD")
		return
	}

	hours, err := s.repo.HumidityAlertHours(r.Context(), roomName, date)
	if err != nil {
		if errors.Is(err, analytics.ErrUnknownRoom) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("computing humidity alerts", "room", roomName, "error", err)
		writeInternalError(w, "failed to compute statistics")
		return
	}
	if hours == nil {
		hours = []int{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room":  roomName,
		"date":  date,
		"hours": hours,
	})
}
