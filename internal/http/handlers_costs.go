package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"costmanager/internal/core"
	"costmanager/internal/report"
)

type addCostRequest struct {
	UserID      *int64           `json:"userid"`
	Sum         *decimal.Decimal `json:"sum"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Date        *time.Time       `json:"date"`
}

func (s *Server) handleAddCost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addCostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.recorder.Record(ctx, "ENDPOINT_ADD_VALIDATION", map[string]any{"error": err.Error()}, "malformed add cost body")
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	s.recorder.Record(ctx, "ENDPOINT_ADD_ENTER", map[string]any{
		"userid":   req.UserID,
		"category": req.Category,
	}, "add cost called")

	if req.UserID == nil {
		s.recorder.Record(ctx, "ENDPOINT_ADD_VALIDATION", map[string]any{"field": "userid"}, "Missing 'userid' field.")
		writeError(w, http.StatusBadRequest, "Missing 'userid' field.")
		return
	}
	if req.Sum == nil || req.Category == nil || strings.TrimSpace(ptrString(req.Description)) == "" {
		s.recorder.Record(ctx, "ENDPOINT_ADD_VALIDATION", map[string]any{
			"fields": []string{"sum", "category", "description"},
		}, "missing required fields")
		writeError(w, http.StatusBadRequest, "Missing required fields: 'sum', 'category', or 'description'.")
		return
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	entry := core.CostEntry{
		UserID:      *req.UserID,
		Sum:         *req.Sum,
		Category:    strings.TrimSpace(*req.Category),
		Description: strings.TrimSpace(*req.Description),
		Date:        core.Date{Time: date},
	}
	if err := entry.Validate(); err != nil {
		s.recorder.Record(ctx, "ENDPOINT_ADD_VALIDATION", map[string]any{"error": err.Error()}, "invalid cost entry")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.CreateCost(ctx, entry)
	if err != nil {
		s.recorder.Record(ctx, "ENDPOINT_ADD_ERROR", map[string]any{"error": err.Error()}, "failed to save cost")
		writeError(w, http.StatusInternalServerError, "An error occurred while saving the cost.")
		return
	}
	if s.reports != nil {
		s.reports.Invalidate(saved.UserID)
	}

	s.recorder.Record(ctx, "ENDPOINT_ADD_SUCCESS", map[string]any{
		"userid": saved.UserID,
		"payload": map[string]any{
			"id":          saved.ID,
			"sum":         saved.Sum,
			"category":    saved.Category,
			"description": saved.Description,
			"date":        saved.Date,
		},
	}, "cost saved")

	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	s.recorder.Record(ctx, "ENDPOINT_REPORT_ENTER", map[string]any{
		"query": q.Encode(),
	}, "report requested")

	for _, param := range []string{"id", "year", "month"} {
		if strings.TrimSpace(q.Get(param)) == "" {
			writeError(w, http.StatusBadRequest, "Missing '"+param+"' query parameter.")
			return
		}
	}

	userID, ok := parseID(q.Get("id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "'id' must be a positive number.")
		return
	}
	year, err := strconv.Atoi(strings.TrimSpace(q.Get("year")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "'year' must be a number.")
		return
	}
	month, err := strconv.Atoi(strings.TrimSpace(q.Get("month")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "'month' must be a number.")
		return
	}

	groups, err := s.reports.AggregateMonth(ctx, userID, year, month)
	if err != nil {
		if errors.Is(err, core.ErrInvalidYear) || errors.Is(err, core.ErrInvalidMonth) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.recorder.Record(ctx, "ENDPOINT_REPORT_ERROR", map[string]any{"error": err.Error()}, "failed to build report")
		writeError(w, http.StatusInternalServerError, "An error occurred while fetching the report.")
		return
	}

	s.recorder.Record(ctx, "ENDPOINT_REPORT_SUCCESS", map[string]any{
		"userid":          userID,
		"year":            year,
		"month":           month,
		"categoriesFound": len(groups),
	}, "report served")

	writeJSON(w, http.StatusOK, report.Format(userID, year, month, groups))
}

func ptrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
