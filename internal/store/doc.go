// Package store provides persistent storage for the ledger using SQLite.
//
// # Architecture
//
// The Store interface covers every map the ledger keeps; SQLiteStore
// implements it in a single struct split across per-concern files (users,
// relationships, forests, milestones, prerequisites, completions, audit).
//
// # Data Models
//
//   - User: one registered identity with an immutable role
//   - Relationship: delegated-authority edge (manager -> subject)
//   - Forest: named milestone collection with an allocated id
//   - Milestone: achievement with optional tree parent and an allocated id
//   - Prerequisite: directed gating edge between milestones
//   - Completion: immutable (milestone, learner) completion record
//   - AuditEntry: append-only record of who mutated what
//
// # ID Allocation
//
// Forest and milestone ids come from the counters table. nextID advances a
// counter inside the same transaction as the insert consuming it, so a failed
// insert rolls the counter back and ids are never leaked or reused.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Error Handling
//
// Each entity has not-found and duplicate sentinels (ErrUserNotFound,
// ErrUserExists, ...) so callers can classify with errors.Is. Unique
// constraint violations map to the duplicate sentinels; all other database
// errors are wrapped with context.
//
// All methods accept context.Context for cancellation support.
package store
