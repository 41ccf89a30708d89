// ABOUTME: Completion store methods for the append-only achievement ledger
// ABOUTME: Completions are immutable and unique per (milestone, learner) pair

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateCompletion appends a completion record.
// Returns ErrCompletionExists if the (milestone, learner) pair is already completed.
func (s *SQLiteStore) CreateCompletion(ctx context.Context, completion *Completion) error {
	query := `
		INSERT INTO completions (milestone_id, learner_id, completed_at, verified_by, evidence_url)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		int64(completion.MilestoneID),
		completion.LearnerID,
		int64(completion.CompletedAt),
		completion.VerifiedBy,
		nullString(completion.EvidenceURL),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrCompletionExists
		}
		return fmt.Errorf("inserting completion: %w", err)
	}

	s.logger.Debug("created completion",
		"milestone", completion.MilestoneID,
		"learner", completion.LearnerID,
		"verifier", completion.VerifiedBy,
	)
	return nil
}

// GetCompletion retrieves the completion for a (milestone, learner) pair.
// Returns ErrCompletionNotFound if the pair has no record.
func (s *SQLiteStore) GetCompletion(ctx context.Context, milestoneID uint64, learnerID string) (*Completion, error) {
	query := `
		SELECT milestone_id, learner_id, completed_at, verified_by, evidence_url
		FROM completions
		WHERE milestone_id = ? AND learner_id = ?
	`

	completion, err := scanCompletion(s.db.QueryRowContext(ctx, query, int64(milestoneID), learnerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCompletionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying completion: %w", err)
	}
	return completion, nil
}

// ListCompletionsByLearner returns all completions for a learner ordered by
// completion tick.
func (s *SQLiteStore) ListCompletionsByLearner(ctx context.Context, learnerID string) ([]*Completion, error) {
	query := `
		SELECT milestone_id, learner_id, completed_at, verified_by, evidence_url
		FROM completions
		WHERE learner_id = ?
		ORDER BY completed_at
	`

	rows, err := s.db.QueryContext(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("querying completions: %w", err)
	}
	defer rows.Close()

	var completions []*Completion
	for rows.Next() {
		completion, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning completion: %w", err)
		}
		completions = append(completions, completion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating completions: %w", err)
	}

	return completions, nil
}

func scanCompletion(row scanner) (*Completion, error) {
	var c Completion
	var milestoneID, completedAt int64
	var evidence sql.NullString

	err := row.Scan(
		&milestoneID,
		&c.LearnerID,
		&completedAt,
		&c.VerifiedBy,
		&evidence,
	)
	if err != nil {
		return nil, err
	}

	c.MilestoneID = uint64(milestoneID)
	c.CompletedAt = uint64(completedAt)
	if evidence.Valid {
		c.EvidenceURL = evidence.String
	}
	return &c, nil
}
