// ABOUTME: Delegated-authority relationship operations between manager and subject identities
// ABOUTME: Both ends must be registered; role appropriateness is checked at use time, not here

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/grovehq/grove-ledger/internal/store"
)

// CreateRelationship records the caller as manager of subjectID with the
// given kind. The kind enumeration is closed; both identities must be
// registered. Whether the caller is an Educator or Parent is not verified
// here, that is a completion-time concern for CanManage.
func (s *Service) CreateRelationship(ctx context.Context, callerID, subjectID string, kind store.RelationshipKind) (*store.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !kind.Valid() {
		return nil, fmt.Errorf("%w: relationship kind %q", ErrInvalidParameters, kind)
	}
	if _, err := s.store.GetUser(ctx, callerID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up caller: %w", err)
	}
	if _, err := s.store.GetUser(ctx, subjectID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrChildNotRegistered
		}
		return nil, fmt.Errorf("looking up subject: %w", err)
	}

	rel := &store.Relationship{
		ManagerID: callerID,
		SubjectID: subjectID,
		Kind:      kind,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.CreateRelationship(ctx, rel); err != nil {
		if errors.Is(err, store.ErrDuplicateRelationship) {
			return nil, ErrDuplicateRelationship
		}
		return nil, fmt.Errorf("creating relationship: %w", err)
	}

	s.audit(ctx, callerID, store.AuditCreateRelationship, "relationship", subjectID, map[string]any{
		"subject_id": subjectID,
		"kind":       string(kind),
	})
	return rel, nil
}

// GetRelationship looks up the edge for the ordered (manager, subject) pair.
// The second return reports whether the edge exists.
func (s *Service) GetRelationship(ctx context.Context, managerID, subjectID string) (*store.Relationship, bool, error) {
	rel, err := s.store.GetRelationship(ctx, managerID, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrRelationshipNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("looking up relationship: %w", err)
	}
	return rel, true, nil
}

// ListRelationships returns every edge where managerID is the manager.
func (s *Service) ListRelationships(ctx context.Context, managerID string) ([]*store.Relationship, error) {
	rels, err := s.store.ListRelationshipsByManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	return rels, nil
}
