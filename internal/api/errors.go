// ABOUTME: Maps the ledger error taxonomy onto HTTP statuses and wire codes
// ABOUTME: Every error response is a JSON envelope with error and code fields

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/grovehq/grove-ledger/internal/ledger"
)

// errorResponse is the wire shape of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorStatus classifies err through the ledger taxonomy. Anything the
// taxonomy does not name maps to 500 internal.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrInvalidUserRole):
		return http.StatusBadRequest, "invalid_user_role"
	case errors.Is(err, ledger.ErrInvalidParameters):
		return http.StatusBadRequest, "invalid_parameters"
	case errors.Is(err, ledger.ErrNotAuthorized):
		return http.StatusForbidden, "not_authorized"
	case errors.Is(err, ledger.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, ledger.ErrChildNotRegistered):
		return http.StatusNotFound, "child_not_registered"
	case errors.Is(err, ledger.ErrForestNotFound):
		return http.StatusNotFound, "forest_not_found"
	case errors.Is(err, ledger.ErrMilestoneNotFound):
		return http.StatusNotFound, "milestone_not_found"
	case errors.Is(err, ledger.ErrParentMilestoneNotFound):
		return http.StatusNotFound, "parent_milestone_not_found"
	case errors.Is(err, ledger.ErrPrerequisiteNotFound):
		return http.StatusNotFound, "prerequisite_not_found"
	case errors.Is(err, ledger.ErrUserAlreadyExists):
		return http.StatusConflict, "user_already_exists"
	case errors.Is(err, ledger.ErrForestAlreadyExists):
		return http.StatusConflict, "forest_already_exists"
	case errors.Is(err, ledger.ErrMilestoneAlreadyExists):
		return http.StatusConflict, "milestone_already_exists"
	case errors.Is(err, ledger.ErrDuplicateRelationship):
		return http.StatusConflict, "duplicate_relationship"
	case errors.Is(err, ledger.ErrMilestoneAlreadyCompleted):
		return http.StatusConflict, "milestone_already_completed"
	case errors.Is(err, ledger.ErrPrerequisitesNotCompleted):
		return http.StatusConflict, "prerequisites_not_completed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// sendJSON writes v with the given status. Encoding failures are logged;
// the status line has already been sent by then.
func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encoding response", "error", err)
	}
}

// sendJSONError writes an error envelope with an explicit status and code.
func sendJSONError(w http.ResponseWriter, status int, code, message string) {
	sendJSON(w, status, errorResponse{Error: message, Code: code})
}

// domainError maps a ledger error to its envelope. Unclassified errors are
// logged with request context and reported without internal detail.
func (s *Server) domainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		sendJSONError(w, status, code, "internal error")
		return
	}
	sendJSONError(w, status, code, err.Error())
}
