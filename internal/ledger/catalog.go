// ABOUTME: Forest, milestone, and prerequisite catalog operations
// ABOUTME: Creation is open to any caller; only referential existence is checked

package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/grovehq/grove-ledger/internal/store"
)

// MilestoneParams carries the caller-supplied fields for CreateMilestone.
// ParentID is the optional tree placement; prerequisite edges are added
// separately and gate completion independently of the tree.
type MilestoneParams struct {
	Title       string
	Description string
	Category    string
	Difficulty  int
	ForestID    uint64
	ParentID    *uint64
}

// CreateForest allocates the next forest id and stores the record. There are
// no existence preconditions.
func (s *Service) CreateForest(ctx context.Context, callerID, name, description string) (*store.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	forest := &store.Forest{
		Name:        name,
		Description: description,
		CreatedBy:   callerID,
		CreatedAt:   s.clock.Now(),
	}
	id, err := s.store.CreateForest(ctx, forest)
	if err != nil {
		if errors.Is(err, store.ErrForestExists) {
			return nil, ErrForestAlreadyExists
		}
		return nil, fmt.Errorf("creating forest: %w", err)
	}
	forest.ID = id

	s.audit(ctx, callerID, store.AuditCreateForest, "forest", strconv.FormatUint(id, 10), map[string]any{
		"name": name,
	})
	return forest, nil
}

// GetForest returns the forest record for id.
func (s *Service) GetForest(ctx context.Context, id uint64) (*store.Forest, error) {
	forest, err := s.store.GetForest(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrForestNotFound) {
			return nil, ErrForestNotFound
		}
		return nil, fmt.Errorf("looking up forest: %w", err)
	}
	return forest, nil
}

// ListForests returns every forest in id order.
func (s *Service) ListForests(ctx context.Context) ([]*store.Forest, error) {
	forests, err := s.store.ListForests(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing forests: %w", err)
	}
	return forests, nil
}

// CreateMilestone validates the referenced forest and optional tree parent,
// bounds the difficulty, then allocates the next milestone id and stores the
// record. Check precedence is fixed: forest existence, then difficulty, then
// parent existence.
func (s *Service) CreateMilestone(ctx context.Context, callerID string, params MilestoneParams) (*store.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetForest(ctx, params.ForestID); err != nil {
		if errors.Is(err, store.ErrForestNotFound) {
			return nil, fmt.Errorf("%w: forest %d", ErrForestNotFound, params.ForestID)
		}
		return nil, fmt.Errorf("looking up forest: %w", err)
	}
	if params.Difficulty < 1 || params.Difficulty > 5 {
		return nil, fmt.Errorf("%w: difficulty %d outside [1,5]", ErrInvalidParameters, params.Difficulty)
	}
	if params.ParentID != nil {
		if _, err := s.store.GetMilestone(ctx, *params.ParentID); err != nil {
			if errors.Is(err, store.ErrMilestoneNotFound) {
				return nil, fmt.Errorf("%w: milestone %d", ErrParentMilestoneNotFound, *params.ParentID)
			}
			return nil, fmt.Errorf("looking up parent milestone: %w", err)
		}
	}

	milestone := &store.Milestone{
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Difficulty:  params.Difficulty,
		ForestID:    params.ForestID,
		ParentID:    params.ParentID,
		CreatedBy:   callerID,
		CreatedAt:   s.clock.Now(),
	}
	id, err := s.store.CreateMilestone(ctx, milestone)
	if err != nil {
		if errors.Is(err, store.ErrMilestoneExists) {
			return nil, ErrMilestoneAlreadyExists
		}
		return nil, fmt.Errorf("creating milestone: %w", err)
	}
	milestone.ID = id

	s.audit(ctx, callerID, store.AuditCreateMilestone, "milestone", strconv.FormatUint(id, 10), map[string]any{
		"title":     params.Title,
		"forest_id": params.ForestID,
	})
	return milestone, nil
}

// GetMilestone returns the milestone record for id.
func (s *Service) GetMilestone(ctx context.Context, id uint64) (*store.Milestone, error) {
	milestone, err := s.store.GetMilestone(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMilestoneNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("looking up milestone: %w", err)
	}
	return milestone, nil
}

// ListMilestones returns every milestone in the forest, in id order. The
// forest must exist.
func (s *Service) ListMilestones(ctx context.Context, forestID uint64) ([]*store.Milestone, error) {
	if _, err := s.GetForest(ctx, forestID); err != nil {
		return nil, err
	}
	milestones, err := s.store.ListMilestonesByForest(ctx, forestID)
	if err != nil {
		return nil, fmt.Errorf("listing milestones: %w", err)
	}
	return milestones, nil
}

// AddPrerequisite records that prerequisiteID must be completed before
// milestoneID. Both milestones must exist and the edge must be new. Cycles,
// including self-edges, are not detected; a milestone inside a cycle becomes
// permanently uncompletable.
func (s *Service) AddPrerequisite(ctx context.Context, callerID string, milestoneID, prerequisiteID uint64) (*store.Prerequisite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetMilestone(ctx, milestoneID); err != nil {
		if errors.Is(err, store.ErrMilestoneNotFound) {
			return nil, fmt.Errorf("%w: milestone %d", ErrMilestoneNotFound, milestoneID)
		}
		return nil, fmt.Errorf("looking up milestone: %w", err)
	}
	if _, err := s.store.GetMilestone(ctx, prerequisiteID); err != nil {
		if errors.Is(err, store.ErrMilestoneNotFound) {
			return nil, fmt.Errorf("%w: milestone %d", ErrPrerequisiteNotFound, prerequisiteID)
		}
		return nil, fmt.Errorf("looking up prerequisite: %w", err)
	}

	edge := &store.Prerequisite{
		MilestoneID:    milestoneID,
		PrerequisiteID: prerequisiteID,
		AddedAt:        s.clock.Now(),
	}
	if err := s.store.AddPrerequisite(ctx, edge); err != nil {
		if errors.Is(err, store.ErrDuplicatePrerequisite) {
			return nil, ErrDuplicateRelationship
		}
		return nil, fmt.Errorf("adding prerequisite: %w", err)
	}

	s.audit(ctx, callerID, store.AuditAddPrerequisite, "milestone", strconv.FormatUint(milestoneID, 10), map[string]any{
		"prerequisite_id": prerequisiteID,
	})
	return edge, nil
}

// ListPrerequisites returns the prerequisite edges of milestoneID. The
// milestone must exist.
func (s *Service) ListPrerequisites(ctx context.Context, milestoneID uint64) ([]*store.Prerequisite, error) {
	if _, err := s.GetMilestone(ctx, milestoneID); err != nil {
		return nil, err
	}
	edges, err := s.store.ListPrerequisites(ctx, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("listing prerequisites: %w", err)
	}
	return edges, nil
}
