package www

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/angas/tibberwatch-go/coordinator"
	"github.com/angas/tibberwatch-go/hours"
	"github.com/angas/tibberwatch-go/timewindow"
)

type snapshotResponse struct {
	Homes       map[string]coordinator.Snapshot `json:"homes"`
	LastSuccess time.Time                       `json:"last_success"`
	Stale       bool                            `json:"stale"`
}

func (s *Server) snapshotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		data := s.coord.Data()
		if data == nil {
			writeError(w, http.StatusServiceUnavailable, "no data available yet")
			return
		}

		writeJSON(w, http.StatusOK, snapshotResponse{
			Homes:       data,
			LastSuccess: s.coord.LastSuccess(),
			Stale:       s.coord.IsStale(),
		})
	}
}

func (s *Server) snapshotHomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		homeID := strings.TrimPrefix(r.URL.Path, "/api/snapshot/")
		snapshot, ok := s.coord.Home(homeID)
		if !ok {
			writeError(w, http.StatusNotFound, "no such home")
			return
		}

		writeJSON(w, http.StatusOK, snapshot)
	}
}

func (s *Server) refreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if err := s.coord.Refresh(r.Context()); err != nil {
			s.logger.Error("forced refresh failed", slog.Any("error", err))
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"last_success": s.coord.LastSuccess(),
			"stale":        s.coord.IsStale(),
		})
	}
}

type bestWindowBody struct {
	HomeID          string   `json:"home_id"`
	DurationHours   int      `json:"duration_hours"`
	PowerKw         *float64 `json:"power_kw"`
	StartAfter      *string  `json:"start_after"`
	EndBefore       *string  `json:"end_before"`
	IncludeTomorrow bool     `json:"include_tomorrow"`
}

func (s *Server) bestWindowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var body bestWindowBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if body.DurationHours < 1 || body.DurationHours > 24 {
			writeError(w, http.StatusBadRequest, "duration_hours must be between 1 and 24")
			return
		}

		req := coordinator.BestWindowRequest{
			HomeID:          body.HomeID,
			DurationHours:   body.DurationHours,
			PowerKw:         body.PowerKw,
			IncludeTomorrow: body.IncludeTomorrow,
		}

		var err error
		if req.StartAfter, err = parseClockParam(body.StartAfter); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_after: "+err.Error())
			return
		}
		if req.EndBefore, err = parseClockParam(body.EndBefore); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_before: "+err.Error())
			return
		}

		result, err := s.coord.BestWindowFor(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) forecastHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		homeID := r.URL.Query().Get("home_id")
		hoursAhead := intOrDefault(r.URL, "hours_ahead", 0)

		result, err := s.coord.Forecast(homeID, hoursAhead)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) windowsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			homeID := r.URL.Query().Get("home_id")
			writeJSON(w, http.StatusOK, map[string]any{
				"windows":  s.windows.All(),
				"computed": s.windows.ComputeAll(homeID),
			})

		case http.MethodPost:
			var window timewindow.Window
			if err := json.NewDecoder(r.Body).Decode(&window); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
				return
			}
			if err := s.windows.Add(r.Context(), window); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, http.StatusCreated, window)

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func (s *Server) windowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/windows/")

		switch r.Method {
		case http.MethodGet:
			result, err := s.windows.Compute(name, r.URL.Query().Get("home_id"))
			if err != nil {
				if errors.Is(err, coordinator.ErrNoData) || errors.Is(err, coordinator.ErrNoPriceData) {
					writeServiceError(w, err)
					return
				}
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, result)

		case http.MethodDelete:
			if err := s.windows.Remove(r.Context(), name); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

type logEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Attrs     string    `json:"attrs,omitempty"`
}

func (s *Server) logHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		page := intOrDefault(r.URL, "page", 1)
		pageSize := intOrDefault(r.URL, "page_size", 25)

		rows, err := s.db.GetLogEntries(r.Context(), slog.LevelDebug, page, pageSize)
		if err != nil {
			s.logger.Error("handling log request", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		entries := make([]logEntry, len(rows))
		for i, row := range rows {
			entries[i] = logEntry{
				Timestamp: row.Timestamp,
				Level:     slog.Level(row.Level).String(),
				Message:   row.Message,
				Attrs:     row.Attrs,
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

func parseClockParam(v *string) (*hours.Clock, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	c, err := hours.ParseClock(*v)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coordinator.ErrNoData):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, coordinator.ErrNoPriceData):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
