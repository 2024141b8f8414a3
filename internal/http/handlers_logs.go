package http

import (
	"net/http"
	"strconv"

	"costmanager/internal/core"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 200
)

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var userID *int64
	if raw := r.URL.Query().Get("userid"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "'userid' must be a positive number.")
			return
		}
		userID = &id
	}

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "'limit' must be a positive number.")
			return
		}
		limit = n
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	s.recorder.Record(ctx, "ENDPOINT_LOGS_ENTER", map[string]any{
		"userid": userID,
		"limit":  limit,
	}, "logs requested")

	records, err := s.store.QueryLogs(ctx, userID, limit)
	if err != nil {
		s.recorder.Record(ctx, "ENDPOINT_LOGS_ERROR", map[string]any{"error": err.Error()}, "failed to query logs")
		writeError(w, http.StatusInternalServerError, "An error occurred while fetching the logs.")
		return
	}
	if records == nil {
		records = []core.LogRecord{}
	}

	s.recorder.Record(ctx, "ENDPOINT_LOGS_SUCCESS", map[string]any{
		"count": len(records),
	}, "logs served")

	writeJSON(w, http.StatusOK, records)
}

type teamMember struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

var team = []teamMember{
	{FirstName: "Dana", LastName: "Rossi"},
	{FirstName: "Luca", LastName: "Bianchi"},
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.recorder.Record(r.Context(), "ENDPOINT_ABOUT_ENTER", nil, "about requested")
	writeJSON(w, http.StatusOK, team)
}
