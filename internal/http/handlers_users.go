package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"costmanager/internal/core"
	"costmanager/internal/storage"
)

type addUserRequest struct {
	ID            *int64 `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Birthday      string `json:"birthday"`
	MaritalStatus string `json:"marital_status"`
}

// userDetails is the details wire shape: identity plus the all-time total of
// the user's cost entries.
type userDetails struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	ID        int64           `json:"id"`
	Total     decimal.Decimal `json:"total"`
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	s.recorder.Record(ctx, "ENDPOINT_USERS_ADD_ENTER", map[string]any{
		"id": req.ID,
	}, "add user called")

	if req.ID == nil || req.FirstName == "" || req.LastName == "" || req.Birthday == "" || req.MaritalStatus == "" {
		writeError(w, http.StatusBadRequest,
			"Missing required fields: 'id', 'first_name', 'last_name', 'birthday', or 'marital_status'.")
		return
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		writeError(w, http.StatusBadRequest, "'birthday' must be a date (YYYY-MM-DD or RFC 3339).")
		return
	}

	user := core.User{
		ID:            *req.ID,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Birthday:      core.Date{Time: birthday},
		MaritalStatus: strings.TrimSpace(req.MaritalStatus),
	}
	if err := user.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			writeError(w, http.StatusConflict, "User already exists.")
			return
		}
		s.recorder.Record(ctx, "ENDPOINT_USERS_ADD_ERROR", map[string]any{"error": err.Error()}, "failed to add user")
		writeError(w, http.StatusInternalServerError, "An error occurred while adding the user.")
		return
	}

	s.recorder.Record(ctx, "ENDPOINT_USERS_ADD_SUCCESS", map[string]any{
		"userid": saved.ID,
	}, "user saved")

	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s.recorder.Record(ctx, "ENDPOINT_USERS_LIST_ENTER", nil, "users list requested")

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.recorder.Record(ctx, "ENDPOINT_USERS_LIST_ERROR", map[string]any{"error": err.Error()}, "failed to list users")
		writeError(w, http.StatusInternalServerError, "An error occurred while listing the users.")
		return
	}
	if users == nil {
		users = []core.User{}
	}

	s.recorder.Record(ctx, "ENDPOINT_USERS_LIST_SUCCESS", map[string]any{
		"count": len(users),
	}, "users list served")

	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleUserDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := parseID(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "'id' must be a positive number.")
		return
	}

	s.recorder.Record(ctx, "ENDPOINT_USER_DETAILS_ENTER", map[string]any{
		"userid": userID,
	}, "user details requested")

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found.")
			return
		}
		s.recorder.Record(ctx, "ENDPOINT_USER_DETAILS_ERROR", map[string]any{"error": err.Error()}, "failed to get user details")
		writeError(w, http.StatusInternalServerError, "An error occurred while fetching the user details.")
		return
	}

	total, err := s.store.UserTotal(ctx, userID)
	if err != nil {
		s.recorder.Record(ctx, "ENDPOINT_USER_DETAILS_ERROR", map[string]any{"error": err.Error()}, "failed to total user costs")
		writeError(w, http.StatusInternalServerError, "An error occurred while fetching the user details.")
		return
	}

	s.recorder.Record(ctx, "ENDPOINT_USER_DETAILS_SUCCESS", map[string]any{
		"userid": userID,
		"total":  total,
	}, "user details served")

	writeJSON(w, http.StatusOK, userDetails{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ID:        user.ID,
		Total:     total,
	})
}

// parseBirthday accepts a plain date or a full RFC 3339 timestamp.
func parseBirthday(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
