// ABOUTME: Administrative audit-trail access and token-mint recording
// ABOUTME: The trail itself is written as a side effect of every successful mutation

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/grovehq/grove-ledger/internal/store"
)

// AuditLog returns audit entries matching the filter, newest first. Access
// control is the caller's responsibility (see IsAdmin).
func (s *Service) AuditLog(ctx context.Context, filter store.AuditFilter) ([]*store.AuditEntry, error) {
	entries, err := s.store.ListAuditLog(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing audit log: %w", err)
	}
	return entries, nil
}

// RecordTokenMint notes an admin-minted token in the audit trail. Token
// generation itself happens in the auth layer; only the fact is recorded
// here.
func (s *Service) RecordTokenMint(ctx context.Context, actorID, userID string, ttl time.Duration) {
	s.audit(ctx, actorID, store.AuditCreateToken, "user", userID, map[string]any{
		"ttl": ttl.String(),
	})
}
