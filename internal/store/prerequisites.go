// ABOUTME: Prerequisite edge store methods for milestone gating
// ABOUTME: Edges are directed: the prerequisite must be completed before the dependent milestone

package store

import (
	"context"
	"fmt"
)

// AddPrerequisite stores a gating edge.
// Returns ErrDuplicatePrerequisite if the edge already exists.
func (s *SQLiteStore) AddPrerequisite(ctx context.Context, edge *Prerequisite) error {
	query := `
		INSERT INTO prerequisites (milestone_id, prerequisite_id, added_at)
		VALUES (?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		int64(edge.MilestoneID),
		int64(edge.PrerequisiteID),
		int64(edge.AddedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicatePrerequisite
		}
		return fmt.Errorf("inserting prerequisite: %w", err)
	}

	s.logger.Debug("added prerequisite",
		"milestone", edge.MilestoneID,
		"prerequisite", edge.PrerequisiteID,
	)
	return nil
}

// ListPrerequisites returns all gating edges for a milestone ordered by the
// tick they were added at.
func (s *SQLiteStore) ListPrerequisites(ctx context.Context, milestoneID uint64) ([]*Prerequisite, error) {
	query := `
		SELECT milestone_id, prerequisite_id, added_at
		FROM prerequisites
		WHERE milestone_id = ?
		ORDER BY added_at
	`

	rows, err := s.db.QueryContext(ctx, query, int64(milestoneID))
	if err != nil {
		return nil, fmt.Errorf("querying prerequisites: %w", err)
	}
	defer rows.Close()

	var edges []*Prerequisite
	for rows.Next() {
		var edge Prerequisite
		var mid, pid, addedAt int64

		if err := rows.Scan(&mid, &pid, &addedAt); err != nil {
			return nil, fmt.Errorf("scanning prerequisite: %w", err)
		}
		edge.MilestoneID = uint64(mid)
		edge.PrerequisiteID = uint64(pid)
		edge.AddedAt = uint64(addedAt)
		edges = append(edges, &edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prerequisites: %w", err)
	}

	return edges, nil
}
