// ABOUTME: Closed error taxonomy for all ledger operations
// ABOUTME: Every operation fails with exactly one of these kinds, matchable via errors.Is

package ledger

import "errors"

// Every operation either succeeds or fails with one of the kinds below. The
// first violated precondition is reported; nothing is retried or recovered
// internally. Errors may be wrapped with additional context, so callers must
// classify with errors.Is rather than equality.
var (
	// ErrNotAuthorized means the caller may not act on the subject's records.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrUserNotFound means the referenced identity has no user record.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists means the identity is already registered.
	ErrUserAlreadyExists = errors.New("user already registered")

	// ErrMilestoneNotFound means the referenced milestone id has no record.
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrMilestoneAlreadyExists means a milestone insert collided with an
	// existing id. Unreachable through the allocator in normal operation.
	ErrMilestoneAlreadyExists = errors.New("milestone already exists")

	// ErrForestNotFound means the referenced forest id has no record.
	ErrForestNotFound = errors.New("forest not found")

	// ErrForestAlreadyExists means a forest insert collided with an existing
	// id. Unreachable through the allocator in normal operation.
	ErrForestAlreadyExists = errors.New("forest already exists")

	// ErrParentMilestoneNotFound means the declared tree parent does not exist.
	ErrParentMilestoneNotFound = errors.New("parent milestone not found")

	// ErrPrerequisiteNotFound means the prerequisite end of an edge does not
	// exist.
	ErrPrerequisiteNotFound = errors.New("prerequisite milestone not found")

	// ErrMilestoneAlreadyCompleted means the (milestone, learner) pair already
	// has a completion record.
	ErrMilestoneAlreadyCompleted = errors.New("milestone already completed")

	// ErrPrerequisitesNotCompleted means at least one prerequisite of the
	// milestone has no completion record for the learner.
	ErrPrerequisitesNotCompleted = errors.New("prerequisites not completed")

	// ErrInvalidParameters means a parameter failed a range or enumeration
	// check.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInvalidUserRole means the role is outside the registered enumeration.
	ErrInvalidUserRole = errors.New("invalid user role")

	// ErrChildNotRegistered means the subject of a relationship has no user
	// record.
	ErrChildNotRegistered = errors.New("child not registered")

	// ErrDuplicateRelationship means the relationship or prerequisite edge
	// already exists for the ordered pair.
	ErrDuplicateRelationship = errors.New("duplicate relationship")
)
