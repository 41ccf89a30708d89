// ABOUTME: Authorization predicates deciding who may act on whose records
// ABOUTME: Management requires ownership of the platform or a relationship edge

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/grovehq/grove-ledger/internal/store"
)

// CanManage reports whether managerID may record completions on behalf of
// subjectID. It holds when managerID is the configured platform owner or when
// a relationship edge (managerID, subjectID) exists, regardless of kind. It
// does not gate content creation or relationship establishment.
func (s *Service) CanManage(ctx context.Context, managerID, subjectID string) (bool, error) {
	return s.canManage(ctx, managerID, subjectID)
}

func (s *Service) canManage(ctx context.Context, managerID, subjectID string) (bool, error) {
	if s.ownerID != "" && managerID == s.ownerID {
		return true, nil
	}
	_, err := s.store.GetRelationship(ctx, managerID, subjectID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, store.ErrRelationshipNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("checking relationship: %w", err)
}

// IsAdmin reports whether callerID may use the administrative surface: the
// platform owner, or any registered user with the Admin role. Unregistered
// identities are simply not admins, never an error.
func (s *Service) IsAdmin(ctx context.Context, callerID string) (bool, error) {
	if s.ownerID != "" && callerID == s.ownerID {
		return true, nil
	}
	user, err := s.store.GetUser(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("looking up caller: %w", err)
	}
	return user.Role == store.RoleAdmin, nil
}
