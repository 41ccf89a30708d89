// ABOUTME: Append-only completion ledger guarded by authorization and prerequisite checks
// ABOUTME: One completion per (milestone, learner) pair, immutable once written

package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/grovehq/grove-ledger/internal/store"
)

// CompleteMilestone records that learnerID finished milestoneID, verified by
// the caller. The caller must pass CanManage for the learner. Check
// precedence is fixed: milestone existence, authorization, duplicate
// completion, prerequisite satisfaction.
func (s *Service) CompleteMilestone(ctx context.Context, callerID string, milestoneID uint64, learnerID, evidenceURL string) (*store.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMilestone(ctx, milestoneID); err != nil {
		return nil, err
	}
	ok, err := s.canManage(ctx, callerID, learnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no authority over learner %s", ErrNotAuthorized, learnerID)
	}
	return s.recordCompletion(ctx, callerID, milestoneID, learnerID, evidenceURL, store.AuditCompleteMilestone)
}

// SelfCompleteMilestone records the caller's own completion of milestoneID.
// No authorization check applies; the caller is both learner and verifier.
// Duplicate and prerequisite checks still hold.
func (s *Service) SelfCompleteMilestone(ctx context.Context, callerID string, milestoneID uint64, evidenceURL string) (*store.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireMilestone(ctx, milestoneID); err != nil {
		return nil, err
	}
	return s.recordCompletion(ctx, callerID, milestoneID, callerID, evidenceURL, store.AuditSelfComplete)
}

func (s *Service) requireMilestone(ctx context.Context, milestoneID uint64) error {
	if _, err := s.store.GetMilestone(ctx, milestoneID); err != nil {
		if errors.Is(err, store.ErrMilestoneNotFound) {
			return fmt.Errorf("%w: milestone %d", ErrMilestoneNotFound, milestoneID)
		}
		return fmt.Errorf("looking up milestone: %w", err)
	}
	return nil
}

// recordCompletion runs the duplicate and prerequisite checks, then appends
// the completion record. Called with the service mutex held.
func (s *Service) recordCompletion(ctx context.Context, verifierID string, milestoneID uint64, learnerID, evidenceURL string, action store.AuditAction) (*store.Completion, error) {
	_, err := s.store.GetCompletion(ctx, milestoneID, learnerID)
	if err == nil {
		return nil, ErrMilestoneAlreadyCompleted
	}
	if !errors.Is(err, store.ErrCompletionNotFound) {
		return nil, fmt.Errorf("looking up completion: %w", err)
	}

	// Every prerequisite edge must have a completion for this learner. An
	// empty edge set trivially passes. Recomputed on every call, never cached.
	edges, err := s.store.ListPrerequisites(ctx, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("listing prerequisites: %w", err)
	}
	for _, edge := range edges {
		_, err := s.store.GetCompletion(ctx, edge.PrerequisiteID, learnerID)
		if err == nil {
			continue
		}
		if errors.Is(err, store.ErrCompletionNotFound) {
			return nil, fmt.Errorf("%w: milestone %d requires milestone %d", ErrPrerequisitesNotCompleted, milestoneID, edge.PrerequisiteID)
		}
		return nil, fmt.Errorf("checking prerequisite completion: %w", err)
	}

	completion := &store.Completion{
		MilestoneID: milestoneID,
		LearnerID:   learnerID,
		CompletedAt: s.clock.Now(),
		VerifiedBy:  verifierID,
		EvidenceURL: evidenceURL,
	}
	if err := s.store.CreateCompletion(ctx, completion); err != nil {
		if errors.Is(err, store.ErrCompletionExists) {
			return nil, ErrMilestoneAlreadyCompleted
		}
		return nil, fmt.Errorf("recording completion: %w", err)
	}

	s.audit(ctx, verifierID, action, "milestone", strconv.FormatUint(milestoneID, 10), map[string]any{
		"learner_id": learnerID,
	})
	return completion, nil
}

// IsMilestoneCompleted reports whether a completion record exists for the
// (milestone, learner) pair.
func (s *Service) IsMilestoneCompleted(ctx context.Context, milestoneID uint64, learnerID string) (bool, error) {
	_, err := s.store.GetCompletion(ctx, milestoneID, learnerID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrCompletionNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("looking up completion: %w", err)
}

// GetMilestoneCompletion looks up the completion record for the pair. The
// second return reports whether it exists.
func (s *Service) GetMilestoneCompletion(ctx context.Context, milestoneID uint64, learnerID string) (*store.Completion, bool, error) {
	completion, err := s.store.GetCompletion(ctx, milestoneID, learnerID)
	if err != nil {
		if errors.Is(err, store.ErrCompletionNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up completion: %w", err)
	}
	return completion, true, nil
}

// ListCompletions returns every completion recorded for learnerID.
func (s *Service) ListCompletions(ctx context.Context, learnerID string) ([]*store.Completion, error) {
	completions, err := s.store.ListCompletionsByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}
	return completions, nil
}
