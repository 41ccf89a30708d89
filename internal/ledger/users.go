// ABOUTME: User registration and lookup operations
// ABOUTME: One record per identity, role fixed at registration, no update or delete

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/grovehq/grove-ledger/internal/store"
)

// Register creates the user record for the caller identity. The role must be
// one of the four registered roles and the identity must not already hold a
// record. The record is immutable once written.
func (s *Service) Register(ctx context.Context, callerID, name string, role store.Role) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !role.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidUserRole, role)
	}

	user := &store.User{
		ID:           callerID,
		Name:         name,
		Role:         role,
		RegisteredAt: s.clock.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.audit(ctx, callerID, store.AuditRegisterUser, "user", callerID, map[string]any{
		"name": name,
		"role": role.String(),
	})
	return user, nil
}

// GetUser returns the user record for id.
func (s *Service) GetUser(ctx context.Context, id string) (*store.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}
