// ABOUTME: Admin-only HTTP handlers for the audit trail and token minting
// ABOUTME: Gated per request through the ledger's admin check, not middleware

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/grovehq/grove-ledger/internal/auth"
	"github.com/grovehq/grove-ledger/internal/store"
)

const (
	defaultTokenTTL = 30 * 24 * time.Hour
	maxTokenTTL     = 365 * 24 * time.Hour
)

type auditEntryResponse struct {
	ID         string         `json:"id"`
	At         uint64         `json:"at"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Detail     map[string]any `json:"detail,omitempty"`
}

type listAuditResponse struct {
	Entries []auditEntryResponse `json:"entries"`
}

type mintTokenRequest struct {
	UserID string `json:"user_id"`
	TTL    string `json:"ttl"`
}

type mintTokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	TTL    string `json:"ttl"`
}

// requireAdmin writes the error response and reports false when the caller
// is not the owner or a registered admin.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	callerID := auth.MustFromContext(r.Context()).UserID

	ok, err := s.service.IsAdmin(r.Context(), callerID)
	if err != nil {
		s.domainError(w, r, err)
		return false
	}
	if !ok {
		sendJSONError(w, http.StatusForbidden, "not_authorized", "admin access required")
		return false
	}
	return true
}

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	filter, err := auditFilterFromQuery(r)
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	entries, err := s.service.AuditLog(r.Context(), filter)
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	resp := listAuditResponse{Entries: make([]auditEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, auditEntryResponse{
			ID:         e.ID,
			At:         e.At,
			ActorID:    e.ActorID,
			Action:     string(e.Action),
			TargetType: e.TargetType,
			TargetID:   e.TargetID,
			Detail:     e.Detail,
		})
	}
	sendJSON(w, http.StatusOK, resp)
}

// auditFilterFromQuery parses the optional ?since, ?until, ?actor, ?action,
// ?target_type, ?target_id, and ?limit query parameters.
func auditFilterFromQuery(r *http.Request) (store.AuditFilter, error) {
	var filter store.AuditFilter
	q := r.URL.Query()

	if v := q.Get("since"); v != "" {
		tick, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid since %q", v)
		}
		filter.SinceTick = &tick
	}
	if v := q.Get("until"); v != "" {
		tick, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid until %q", v)
		}
		filter.UntilTick = &tick
	}
	if v := q.Get("actor"); v != "" {
		filter.ActorID = &v
	}
	if v := q.Get("action"); v != "" {
		action := store.AuditAction(v)
		filter.Action = &action
	}
	if v := q.Get("target_type"); v != "" {
		filter.TargetType = &v
	}
	if v := q.Get("target_id"); v != "" {
		filter.TargetID = &v
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
		filter.Limit = limit
	}

	return filter, nil
}

// handleCreateToken mints a bearer token for an arbitrary subject. The mint
// is recorded in the audit trail with the requested lifetime.
func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	callerID := auth.MustFromContext(r.Context()).UserID

	var req mintTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "invalid request body")
		return
	}
	if req.UserID == "" {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "user_id is required")
		return
	}

	ttl := s.cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if req.TTL != "" {
		parsed, err := time.ParseDuration(req.TTL)
		if err != nil {
			sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "invalid ttl")
			return
		}
		ttl = parsed
	}
	if ttl <= 0 || ttl > maxTokenTTL {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "ttl out of range")
		return
	}

	token, err := s.tokens.Generate(req.UserID, ttl)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	s.service.RecordTokenMint(r.Context(), callerID, req.UserID, ttl)

	sendJSON(w, http.StatusCreated, mintTokenResponse{
		Token:  token,
		UserID: req.UserID,
		TTL:    ttl.String(),
	})
}
