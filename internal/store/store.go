// ABOUTME: Store interface and data models for the achievement ledger
// ABOUTME: Defines users, relationships, forests, milestones, prerequisites, and completions

package store

import (
	"context"
	"errors"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a user whose identity is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrRelationshipNotFound is returned when no edge exists for the ordered pair.
	ErrRelationshipNotFound = errors.New("relationship not found")

	// ErrDuplicateRelationship is returned when the ordered (manager, subject) pair already exists.
	ErrDuplicateRelationship = errors.New("relationship already exists")

	// ErrForestNotFound is returned when the requested forest does not exist.
	ErrForestNotFound = errors.New("forest not found")

	// ErrForestExists is returned when a forest insert collides on id.
	ErrForestExists = errors.New("forest already exists")

	// ErrMilestoneNotFound is returned when the requested milestone does not exist.
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrMilestoneExists is returned when a milestone insert collides on id.
	ErrMilestoneExists = errors.New("milestone already exists")

	// ErrDuplicatePrerequisite is returned when the prerequisite edge already exists.
	ErrDuplicatePrerequisite = errors.New("prerequisite edge already exists")

	// ErrCompletionNotFound is returned when no completion exists for the pair.
	ErrCompletionNotFound = errors.New("completion not found")

	// ErrCompletionExists is returned when the (milestone, learner) pair is already completed.
	ErrCompletionExists = errors.New("completion already exists")
)

// Role classifies a registered user. Roles are immutable after registration.
type Role int

const (
	RoleAdmin    Role = 1
	RoleEducator Role = 2
	RoleParent   Role = 3
	RoleChild    Role = 4
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r >= RoleAdmin && r <= RoleChild
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleEducator:
		return "educator"
	case RoleParent:
		return "parent"
	case RoleChild:
		return "child"
	default:
		return "unknown"
	}
}

// RelationshipKind is the closed set of delegated-authority edge kinds.
type RelationshipKind string

const (
	RelationshipParentChild   RelationshipKind = "parent-child"
	RelationshipEducatorChild RelationshipKind = "educator-child"
)

// Valid reports whether k is one of the defined kinds.
func (k RelationshipKind) Valid() bool {
	return k == RelationshipParentChild || k == RelationshipEducatorChild
}

// User is one registered identity. There is never more than one record per
// identity and records are never updated or deleted.
type User struct {
	ID           string // opaque caller identity
	Name         string
	Role         Role
	RegisteredAt uint64 // logical clock tick
}

// Relationship is a directed delegated-authority edge from a manager to a
// subject. Unique per ordered pair.
type Relationship struct {
	ManagerID string
	SubjectID string
	Kind      RelationshipKind
	CreatedAt uint64
}

// Forest is a named collection of milestones.
type Forest struct {
	ID          uint64 // allocated, monotonically increasing
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   uint64
}

// Milestone is a single learning achievement. ParentID places it in the
// organizational tree; prerequisite edges gate its completion independently.
type Milestone struct {
	ID          uint64 // allocated, monotonically increasing
	Title       string
	Description string
	Category    string
	Difficulty  int // 1..5
	ForestID    uint64
	ParentID    *uint64 // nil when the milestone has no tree parent
	CreatedBy   string
	CreatedAt   uint64
}

// Prerequisite is a directed gating edge: PrerequisiteID must be completed
// before MilestoneID.
type Prerequisite struct {
	MilestoneID    uint64
	PrerequisiteID uint64
	AddedAt        uint64
}

// Completion records that a learner finished a milestone. At most one per
// (milestone, learner) pair; immutable once written.
type Completion struct {
	MilestoneID uint64
	LearnerID   string
	CompletedAt uint64
	VerifiedBy  string
	EvidenceURL string // empty when no evidence was attached
}

// Store is the persistence interface for the ledger. All writes are atomic;
// id allocation happens inside the same transaction as the insert it serves.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)

	// Relationships
	CreateRelationship(ctx context.Context, rel *Relationship) error
	GetRelationship(ctx context.Context, managerID, subjectID string) (*Relationship, error)
	ListRelationshipsByManager(ctx context.Context, managerID string) ([]*Relationship, error)

	// Forests
	CreateForest(ctx context.Context, forest *Forest) (uint64, error)
	GetForest(ctx context.Context, id uint64) (*Forest, error)
	ListForests(ctx context.Context) ([]*Forest, error)

	// Milestones
	CreateMilestone(ctx context.Context, milestone *Milestone) (uint64, error)
	GetMilestone(ctx context.Context, id uint64) (*Milestone, error)
	ListMilestonesByForest(ctx context.Context, forestID uint64) ([]*Milestone, error)

	// Prerequisite edges
	AddPrerequisite(ctx context.Context, edge *Prerequisite) error
	ListPrerequisites(ctx context.Context, milestoneID uint64) ([]*Prerequisite, error)

	// Completions
	CreateCompletion(ctx context.Context, completion *Completion) error
	GetCompletion(ctx context.Context, milestoneID uint64, learnerID string) (*Completion, error)
	ListCompletionsByLearner(ctx context.Context, learnerID string) ([]*Completion, error)

	// Audit
	AppendAuditLog(ctx context.Context, entry *AuditEntry) error
	ListAuditLog(ctx context.Context, filter AuditFilter) ([]*AuditEntry, error)

	Close() error
}
