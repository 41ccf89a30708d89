// ABOUTME: Milestone store methods with transactional id allocation
// ABOUTME: Milestone ids come from the milestone counter, advanced only on successful insert

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateMilestone allocates the next milestone id and stores the record, both
// inside one transaction. Returns the allocated id.
func (s *SQLiteStore) CreateMilestone(ctx context.Context, milestone *Milestone) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := nextID(tx, "milestone")
	if err != nil {
		return 0, err
	}

	var parentID any
	if milestone.ParentID != nil {
		parentID = int64(*milestone.ParentID)
	}

	query := `
		INSERT INTO milestones (id, title, description, category, difficulty, forest_id, parent_id, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		int64(id),
		milestone.Title,
		milestone.Description,
		milestone.Category,
		milestone.Difficulty,
		int64(milestone.ForestID),
		parentID,
		milestone.CreatedBy,
		int64(milestone.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, ErrMilestoneExists
		}
		return 0, fmt.Errorf("inserting milestone: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing milestone: %w", err)
	}

	s.logger.Debug("created milestone", "id", id, "title", milestone.Title, "forest", milestone.ForestID)
	return id, nil
}

// GetMilestone retrieves a milestone by id.
// Returns ErrMilestoneNotFound if no record exists.
func (s *SQLiteStore) GetMilestone(ctx context.Context, id uint64) (*Milestone, error) {
	query := `
		SELECT id, title, description, category, difficulty, forest_id, parent_id, created_by, created_at
		FROM milestones
		WHERE id = ?
	`

	milestone, err := scanMilestone(s.db.QueryRowContext(ctx, query, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMilestoneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying milestone: %w", err)
	}
	return milestone, nil
}

// ListMilestonesByForest returns all milestones in a forest ordered by id.
func (s *SQLiteStore) ListMilestonesByForest(ctx context.Context, forestID uint64) ([]*Milestone, error) {
	query := `
		SELECT id, title, description, category, difficulty, forest_id, parent_id, created_by, created_at
		FROM milestones
		WHERE forest_id = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, int64(forestID))
	if err != nil {
		return nil, fmt.Errorf("querying milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*Milestone
	for rows.Next() {
		milestone, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		milestones = append(milestones, milestone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating milestones: %w", err)
	}

	return milestones, nil
}

func scanMilestone(row scanner) (*Milestone, error) {
	var m Milestone
	var id, forestID, createdAt int64
	var parentID sql.NullInt64

	err := row.Scan(
		&id,
		&m.Title,
		&m.Description,
		&m.Category,
		&m.Difficulty,
		&forestID,
		&parentID,
		&m.CreatedBy,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	m.ID = uint64(id)
	m.ForestID = uint64(forestID)
	m.CreatedAt = uint64(createdAt)
	if parentID.Valid {
		pid := uint64(parentID.Int64)
		m.ParentID = &pid
	}
	return &m, nil
}
