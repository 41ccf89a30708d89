// ABOUTME: HTTP handlers for delegated-authority relationship edges
// ABOUTME: The caller is always the manager side of a new edge

package api

import (
	"encoding/json"
	"net/http"

	"github.com/grovehq/grove-ledger/internal/auth"
	"github.com/grovehq/grove-ledger/internal/store"
)

type createRelationshipRequest struct {
	SubjectID string `json:"subject_id"`
	Kind      string `json:"kind"`
}

type relationshipResponse struct {
	ManagerID string `json:"manager_id"`
	SubjectID string `json:"subject_id"`
	Kind      string `json:"kind"`
	CreatedAt uint64 `json:"created_at"`
}

func toRelationshipResponse(rel *store.Relationship) relationshipResponse {
	return relationshipResponse{
		ManagerID: rel.ManagerID,
		SubjectID: rel.SubjectID,
		Kind:      string(rel.Kind),
		CreatedAt: rel.CreatedAt,
	}
}

type listRelationshipsResponse struct {
	Relationships []relationshipResponse `json:"relationships"`
}

func (s *Server) handleCreateRelationship(w http.ResponseWriter, r *http.Request) {
	callerID := auth.MustFromContext(r.Context()).UserID

	var req createRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "invalid request body")
		return
	}

	rel, err := s.service.CreateRelationship(r.Context(), callerID, req.SubjectID, store.RelationshipKind(req.Kind))
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	sendJSON(w, http.StatusCreated, toRelationshipResponse(rel))
}

func (s *Server) handleGetRelationship(w http.ResponseWriter, r *http.Request) {
	managerID := r.PathValue("manager")
	subjectID := r.PathValue("subject")

	rel, found, err := s.service.GetRelationship(r.Context(), managerID, subjectID)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	if !found {
		sendJSONError(w, http.StatusNotFound, "relationship_not_found", "relationship not found")
		return
	}
	sendJSON(w, http.StatusOK, toRelationshipResponse(rel))
}

func (s *Server) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := s.service.ListRelationships(r.Context(), r.PathValue("id"))
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	resp := listRelationshipsResponse{Relationships: make([]relationshipResponse, 0, len(rels))}
	for _, rel := range rels {
		resp.Relationships = append(resp.Relationships, toRelationshipResponse(rel))
	}
	sendJSON(w, http.StatusOK, resp)
}
