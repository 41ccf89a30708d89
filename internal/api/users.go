// ABOUTME: HTTP handlers for user registration and lookup
// ABOUTME: Registration binds the record to the verified token subject

package api

import (
	"encoding/json"
	"net/http"

	"github.com/grovehq/grove-ledger/internal/auth"
	"github.com/grovehq/grove-ledger/internal/store"
)

type registerRequest struct {
	Name string `json:"name"`
	Role int    `json:"role"`
}

type userResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         int    `json:"role"`
	RoleName     string `json:"role_name"`
	RegisteredAt uint64 `json:"registered_at"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Name:         u.Name,
		Role:         int(u.Role),
		RoleName:     u.Role.String(),
		RegisteredAt: u.RegisteredAt,
	}
}

// handleRegister creates the caller's own user record. The id always comes
// from the token subject, never from the body.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	callerID := auth.MustFromContext(r.Context()).UserID

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "invalid request body")
		return
	}
	if req.Name == "" {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "name is required")
		return
	}

	user, err := s.service.Register(r.Context(), callerID, req.Name, store.Role(req.Role))
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	sendJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.service.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, toUserResponse(user))
}

// handleMe resolves the caller's own record from the token subject, so
// clients never need to decode the token themselves.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	callerID := auth.MustFromContext(r.Context()).UserID

	user, err := s.service.GetUser(r.Context(), callerID)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, toUserResponse(user))
}
