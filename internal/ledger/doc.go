// Package ledger implements the domain operations of the achievement ledger:
// user registration, delegated-authority relationships, the forest/milestone
// catalog with prerequisite edges, and the append-only completion ledger.
//
// # Operations
//
// Mutating operations:
//
//	Register               one user record per identity, role fixed for life
//	CreateRelationship     directed (manager, subject) authority edge
//	CreateForest           allocates the next forest id
//	CreateMilestone        allocates the next milestone id, validates references
//	AddPrerequisite        directed gating edge between milestones
//	CompleteMilestone      verifier records a learner's completion
//	SelfCompleteMilestone  learner records their own completion
//
// Read-only lookups (GetUser, GetForest, GetMilestone, GetRelationship,
// IsMilestoneCompleted, GetMilestoneCompletion and the List* methods) are
// single store calls.
//
// # Authorization
//
// CanManage(manager, subject) holds for the configured platform owner and for
// any existing relationship edge regardless of kind. It gates completion
// recording only: content creation and relationship establishment are open to
// any authenticated caller in this version. Tightening that is a policy
// decision deliberately not taken here.
//
// # Concurrency
//
// A single service mutex serializes every mutating operation across its full
// check-then-act span. Combined with the store's transactional id allocation
// this gives the same observable semantics as a serially executed system: no
// partial writes, no leaked ids, and precondition checks that cannot be
// invalidated mid-operation.
//
// # Errors
//
// All failures are classified by the closed sentinel taxonomy in errors.go
// and matched with errors.Is. The first violated precondition wins; error
// wrapping only adds context, never changes the kind.
package ledger
