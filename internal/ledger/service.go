// ABOUTME: Service wires the store, clock, and platform owner into the domain operations
// ABOUTME: One mutex serializes every mutating operation to keep check-then-act atomic

package ledger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/grovehq/grove-ledger/internal/clock"
	"github.com/grovehq/grove-ledger/internal/store"
)

// Service implements the ledger operations over a persistent store. All
// timestamps come from the injected clock; the configured platform owner
// identity always passes the management check.
//
// Mutating operations hold a single mutex for their full check-then-act
// span, so preconditions observed by one write cannot be invalidated by
// another. Read-only lookups are single store calls and do not take the lock.
type Service struct {
	mu      sync.Mutex
	store   store.Store
	clock   clock.Clock
	ownerID string
	logger  *slog.Logger
}

// New creates a Service backed by the given store and clock. ownerID is the
// deployment-time platform owner identity; it may act on any learner's
// records without holding a relationship.
func New(st store.Store, clk clock.Clock, ownerID string) *Service {
	return &Service{
		store:   st,
		clock:   clk,
		ownerID: ownerID,
		logger:  slog.Default().With("component", "ledger"),
	}
}

// audit appends an entry to the audit trail. Failures are logged and never
// fail the operation that produced them.
func (s *Service) audit(ctx context.Context, actorID string, action store.AuditAction, targetType, targetID string, detail map[string]any) {
	entry := &store.AuditEntry{
		At:         s.clock.Now(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
	}
	if err := s.store.AppendAuditLog(ctx, entry); err != nil {
		s.logger.Warn("audit append failed", "action", action, "target", targetID, "error", err)
	}
}
