// ABOUTME: Relationship store methods for delegated-authority edges
// ABOUTME: Edges run from a manager identity to a subject identity, unique per ordered pair

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateRelationship stores a new delegated-authority edge.
// Returns ErrDuplicateRelationship if the ordered pair already exists.
func (s *SQLiteStore) CreateRelationship(ctx context.Context, rel *Relationship) error {
	query := `
		INSERT INTO relationships (manager_id, subject_id, kind, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rel.ManagerID,
		rel.SubjectID,
		string(rel.Kind),
		int64(rel.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateRelationship
		}
		return fmt.Errorf("inserting relationship: %w", err)
	}

	s.logger.Debug("created relationship",
		"manager", rel.ManagerID,
		"subject", rel.SubjectID,
		"kind", string(rel.Kind),
	)
	return nil
}

// GetRelationship retrieves the edge for the ordered (manager, subject) pair.
// Returns ErrRelationshipNotFound if no edge exists.
func (s *SQLiteStore) GetRelationship(ctx context.Context, managerID, subjectID string) (*Relationship, error) {
	query := `
		SELECT manager_id, subject_id, kind, created_at
		FROM relationships
		WHERE manager_id = ? AND subject_id = ?
	`

	var rel Relationship
	var kind string
	var createdAt int64

	err := s.db.QueryRowContext(ctx, query, managerID, subjectID).Scan(
		&rel.ManagerID,
		&rel.SubjectID,
		&kind,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRelationshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying relationship: %w", err)
	}

	rel.Kind = RelationshipKind(kind)
	rel.CreatedAt = uint64(createdAt)
	return &rel, nil
}

// ListRelationshipsByManager returns all edges where managerID is the manager,
// ordered by creation tick.
func (s *SQLiteStore) ListRelationshipsByManager(ctx context.Context, managerID string) ([]*Relationship, error) {
	query := `
		SELECT manager_id, subject_id, kind, created_at
		FROM relationships
		WHERE manager_id = ?
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var rels []*Relationship
	for rows.Next() {
		var rel Relationship
		var kind string
		var createdAt int64

		if err := rows.Scan(&rel.ManagerID, &rel.SubjectID, &kind, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		rel.Kind = RelationshipKind(kind)
		rel.CreatedAt = uint64(createdAt)
		rels = append(rels, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}

	return rels, nil
}
