// ABOUTME: HTTP handlers for forests, milestones, and prerequisite edges
// ABOUTME: Textual field validation happens here; the ledger core checks references and ranges

package api

import (
	"encoding/json"
	"net/http"

	"github.com/grovehq/grove-ledger/internal/auth"
	"github.com/grovehq/grove-ledger/internal/ledger"
	"github.com/grovehq/grove-ledger/internal/store"
)

type createForestRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type forestResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   uint64 `json:"created_at"`
}

func toForestResponse(f *store.Forest) forestResponse {
	return forestResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedBy:   f.CreatedBy,
		CreatedAt:   f.CreatedAt,
	}
}

type listForestsResponse struct {
	Forests []forestResponse `json:"forests"`
}

type createMilestoneRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Difficulty  int     `json:"difficulty"`
	ForestID    uint64  `json:"forest_id"`
	ParentID    *uint64 `json:"parent_milestone_id"`
}

type milestoneResponse struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Difficulty  int     `json:"difficulty"`
	ForestID    uint64  `json:"forest_id"`
	ParentID    *uint64 `json:"parent_milestone_id,omitempty"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   uint64  `json:"created_at"`
}

func toMilestoneResponse(m *store.Milestone) milestoneResponse {
	return milestoneResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		Difficulty:  m.Difficulty,
		ForestID:    m.ForestID,
		ParentID:    m.ParentID,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

type listMilestonesResponse struct {
	Milestones []milestoneResponse `json:"milestones"`
}

type addPrerequisiteRequest struct {
	PrerequisiteID uint64 `json:"prerequisite_id"`
}

type prerequisiteResponse struct {
	MilestoneID    uint64 `json:"milestone_id"`
	PrerequisiteID uint64 `json:"prerequisite_id"`
	AddedAt        uint64 `json:"added_at"`
}

func toPrerequisiteResponse(p *store.Prerequisite) prerequisiteResponse {
	return prerequisiteResponse{
		MilestoneID:    p.MilestoneID,
		PrerequisiteID: p.PrerequisiteID,
		AddedAt:        p.AddedAt,
	}
}

type listPrerequisitesResponse struct {
	Prerequisites []prerequisiteResponse `json:"prerequisites"`
}

// --- Forests ---

func (s *Server) handleCreateForest(w http.ResponseWriter, r *http.Request) {
	callerID := auth.MustFromContext(r.Context()).UserID

	var req createForestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "invalid request body")
		return
	}
	if req.Name == "" {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "name is required")
		return
	}

	forest, err := s.service.CreateForest(r.Context(), callerID, req.Name, req.Description)
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	sendJSON(w, http.StatusCreated, toForestResponse(forest))
}

func (s *Server) handleGetForest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	forest, err := s.service.GetForest(r.Context(), id)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, toForestResponse(forest))
}

func (s *Server) handleListForests(w http.ResponseWriter, r *http.Request) {
	forests, err := s.service.ListForests(r.Context())
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	resp := listForestsResponse{Forests: make([]forestResponse, 0, len(forests))}
	for _, forest := range forests {
		resp.Forests = append(resp.Forests, toForestResponse(forest))
	}
	sendJSON(w, http.StatusOK, resp)
}

// --- Milestones ---

func (s *Server) handleCreateMilestone(w http.ResponseWriter, r *http.Request) {
	callerID := auth.MustFromContext(r.Context()).UserID

	var req createMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "invalid request body")
		return
	}
	if req.Title == "" {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "title is required")
		return
	}

	milestone, err := s.service.CreateMilestone(r.Context(), callerID, ledger.MilestoneParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		ForestID:    req.ForestID,
		ParentID:    req.ParentID,
	})
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	sendJSON(w, http.StatusCreated, toMilestoneResponse(milestone))
}

func (s *Server) handleGetMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	milestone, err := s.service.GetMilestone(r.Context(), id)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, toMilestoneResponse(milestone))
}

func (s *Server) handleListForestMilestones(w http.ResponseWriter, r *http.Request) {
	forestID, err := pathID(r, "id")
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	milestones, err := s.service.ListMilestones(r.Context(), forestID)
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	resp := listMilestonesResponse{Milestones: make([]milestoneResponse, 0, len(milestones))}
	for _, milestone := range milestones {
		resp.Milestones = append(resp.Milestones, toMilestoneResponse(milestone))
	}
	sendJSON(w, http.StatusOK, resp)
}

// --- Prerequisites ---

func (s *Server) handleAddPrerequisite(w http.ResponseWriter, r *http.Request) {
	callerID := auth.MustFromContext(r.Context()).UserID

	milestoneID, err := pathID(r, "id")
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	var req addPrerequisiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "invalid request body")
		return
	}

	edge, err := s.service.AddPrerequisite(r.Context(), callerID, milestoneID, req.PrerequisiteID)
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	sendJSON(w, http.StatusCreated, toPrerequisiteResponse(edge))
}

func (s *Server) handleListPrerequisites(w http.ResponseWriter, r *http.Request) {
	milestoneID, err := pathID(r, "id")
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}

	edges, err := s.service.ListPrerequisites(r.Context(), milestoneID)
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	resp := listPrerequisitesResponse{Prerequisites: make([]prerequisiteResponse, 0, len(edges))}
	for _, edge := range edges {
		resp.Prerequisites = append(resp.Prerequisites, toPrerequisiteResponse(edge))
	}
	sendJSON(w, http.StatusOK, resp)
}
