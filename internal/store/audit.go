// ABOUTME: Audit log entity and store methods for tracking ledger mutations
// ABOUTME: Records who did what to which record, append-only like everything else

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AuditAction represents an auditable action.
type AuditAction string

const (
	AuditRegisterUser       AuditAction = "register_user"
	AuditCreateRelationship AuditAction = "create_relationship"
	AuditCreateForest       AuditAction = "create_forest"
	AuditCreateMilestone    AuditAction = "create_milestone"
	AuditAddPrerequisite    AuditAction = "add_prerequisite"
	AuditCompleteMilestone  AuditAction = "complete_milestone"
	AuditSelfComplete       AuditAction = "self_complete_milestone"
	AuditCreateToken        AuditAction = "create_token"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         string         // UUID v4
	At         uint64         // logical clock tick
	ActorID    string         // who performed the action
	Action     AuditAction    // what action was performed
	TargetType string         // "user", "relationship", "forest", "milestone", "completion", "token"
	TargetID   string         // ID of the affected record
	Detail     map[string]any // additional context
}

// AuditFilter specifies filtering options for listing audit entries.
type AuditFilter struct {
	SinceTick  *uint64      // entries at or after this tick
	UntilTick  *uint64      // entries at or before this tick
	ActorID    *string      // filter by actor
	Action     *AuditAction // filter by action type
	TargetType *string      // filter by target type
	TargetID   *string      // filter by target ID
	Limit      int          // max results (default 100, max 1000)
}

// AppendAuditLog appends a new entry to the audit log.
// Generates the entry ID if not set.
func (s *SQLiteStore) AppendAuditLog(ctx context.Context, e *AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	var detailJSON *string
	if e.Detail != nil {
		data, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
		str := string(data)
		detailJSON = &str
	}

	query := `
		INSERT INTO audit_log (audit_id, at_tick, actor_id, action, target_type, target_id, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		int64(e.At),
		e.ActorID,
		string(e.Action),
		e.TargetType,
		e.TargetID,
		detailJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	s.logger.Debug("appended audit log",
		"id", e.ID,
		"actor", e.ActorID,
		"action", e.Action,
		"target", e.TargetType+"/"+e.TargetID,
	)
	return nil
}

// normalizeAuditLimit applies default (100) and cap (1000) to audit limit.
func normalizeAuditLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

// scanAuditEntry scans a row into an AuditEntry.
func scanAuditEntry(row scanner) (*AuditEntry, error) {
	var e AuditEntry
	var at int64
	var actionStr string
	var detailJSON *string

	if err := row.Scan(
		&e.ID,
		&at,
		&e.ActorID,
		&actionStr,
		&e.TargetType,
		&e.TargetID,
		&detailJSON,
	); err != nil {
		return nil, fmt.Errorf("scanning audit entry: %w", err)
	}

	e.At = uint64(at)
	e.Action = AuditAction(actionStr)

	if detailJSON != nil {
		if err := json.Unmarshal([]byte(*detailJSON), &e.Detail); err != nil {
			return nil, fmt.Errorf("unmarshaling detail: %w", err)
		}
	}
	return &e, nil
}

const auditLogQuery = `
	SELECT audit_id, at_tick, actor_id, action, target_type, target_id, detail_json
	FROM audit_log
	WHERE (? IS NULL OR at_tick >= ?)
	  AND (? IS NULL OR at_tick <= ?)
	  AND (? IS NULL OR actor_id = ?)
	  AND (? IS NULL OR action = ?)
	  AND (? IS NULL OR target_type = ?)
	  AND (? IS NULL OR target_id = ?)
	ORDER BY at_tick DESC, audit_id
	LIMIT ?
`

// ListAuditLog returns audit entries matching the filter criteria.
// Results are returned newest first (DESC by tick).
func (s *SQLiteStore) ListAuditLog(ctx context.Context, f AuditFilter) ([]*AuditEntry, error) {
	limit := normalizeAuditLimit(f.Limit)

	var sinceTick, untilTick *int64
	if f.SinceTick != nil {
		t := int64(*f.SinceTick)
		sinceTick = &t
	}
	if f.UntilTick != nil {
		t := int64(*f.UntilTick)
		untilTick = &t
	}
	var actionStr *string
	if f.Action != nil {
		a := string(*f.Action)
		actionStr = &a
	}

	rows, err := s.db.QueryContext(ctx, auditLogQuery,
		sinceTick, sinceTick,
		untilTick, untilTick,
		f.ActorID, f.ActorID,
		actionStr, actionStr,
		f.TargetType, f.TargetType,
		f.TargetID, f.TargetID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit log: %w", err)
	}

	return entries, nil
}
