// ABOUTME: HTTP handlers for recording and reading milestone completions
// ABOUTME: Single-pair reads go through the optional Redis cache when enabled

package api

import (
	"encoding/json"
	"net/http"

	"github.com/grovehq/grove-ledger/internal/auth"
	"github.com/grovehq/grove-ledger/internal/store"
)

type completeMilestoneRequest struct {
	MilestoneID uint64 `json:"milestone_id"`
	LearnerID   string `json:"learner_id"`
	EvidenceURL string `json:"evidence_url"`
}

type selfCompleteRequest struct {
	MilestoneID uint64 `json:"milestone_id"`
	EvidenceURL string `json:"evidence_url"`
}

type completionResponse struct {
	MilestoneID uint64 `json:"milestone_id"`
	LearnerID   string `json:"learner_id"`
	CompletedAt uint64 `json:"completed_at"`
	VerifiedBy  string `json:"verified_by"`
	EvidenceURL string `json:"evidence_url,omitempty"`
}

func toCompletionResponse(c *store.Completion) completionResponse {
	return completionResponse{
		MilestoneID: c.MilestoneID,
		LearnerID:   c.LearnerID,
		CompletedAt: c.CompletedAt,
		VerifiedBy:  c.VerifiedBy,
		EvidenceURL: c.EvidenceURL,
	}
}

type listCompletionsResponse struct {
	Completions []completionResponse `json:"completions"`
}

// handleCompleteMilestone records a completion on behalf of a learner. The
// caller is the verifier and must hold authority over the learner.
func (s *Server) handleCompleteMilestone(w http.ResponseWriter, r *http.Request) {
	callerID := auth.MustFromContext(r.Context()).UserID

	var req completeMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "invalid request body")
		return
	}
	if req.LearnerID == "" {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "learner_id is required")
		return
	}

	completion, err := s.service.CompleteMilestone(r.Context(), callerID, req.MilestoneID, req.LearnerID, req.EvidenceURL)
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	sendJSON(w, http.StatusCreated, toCompletionResponse(completion))
}

// handleSelfComplete records the caller's own completion. No authority check
// applies; duplicate and prerequisite gates still do.
func (s *Server) handleSelfComplete(w http.ResponseWriter, r *http.Request) {
	callerID := auth.MustFromContext(r.Context()).UserID

	var req selfCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", "invalid request body")
		return
	}

	completion, err := s.service.SelfCompleteMilestone(r.Context(), callerID, req.MilestoneID, req.EvidenceURL)
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	sendJSON(w, http.StatusCreated, toCompletionResponse(completion))
}

// handleGetCompletion looks up the completion for one (milestone, learner)
// pair. Completions are immutable, so a cache hit never goes stale.
func (s *Server) handleGetCompletion(w http.ResponseWriter, r *http.Request) {
	milestoneID, err := pathID(r, "id")
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid_parameters", err.Error())
		return
	}
	learnerID := r.PathValue("learner")

	if s.completions != nil {
		if completion, found := s.completions.Get(r.Context(), milestoneID, learnerID); found {
			sendJSON(w, http.StatusOK, toCompletionResponse(completion))
			return
		}
	}

	completion, found, err := s.service.GetMilestoneCompletion(r.Context(), milestoneID, learnerID)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	if !found {
		sendJSONError(w, http.StatusNotFound, "completion_not_found", "completion not found")
		return
	}

	if s.completions != nil {
		s.completions.Put(r.Context(), completion)
	}
	sendJSON(w, http.StatusOK, toCompletionResponse(completion))
}

func (s *Server) handleListLearnerCompletions(w http.ResponseWriter, r *http.Request) {
	completions, err := s.service.ListCompletions(r.Context(), r.PathValue("id"))
	if err != nil {
		s.domainError(w, r, err)
		return
	}

	resp := listCompletionsResponse{Completions: make([]completionResponse, 0, len(completions))}
	for _, completion := range completions {
		resp.Completions = append(resp.Completions, toCompletionResponse(completion))
	}
	sendJSON(w, http.StatusOK, resp)
}
