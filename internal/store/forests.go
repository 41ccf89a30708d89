// ABOUTME: Forest store methods with transactional id allocation
// ABOUTME: Forest ids come from the forest counter, advanced only on successful insert

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateForest allocates the next forest id and stores the record, both inside
// one transaction. Returns the allocated id.
func (s *SQLiteStore) CreateForest(ctx context.Context, forest *Forest) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := nextID(tx, "forest")
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO forests (id, name, description, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		int64(id),
		forest.Name,
		forest.Description,
		forest.CreatedBy,
		int64(forest.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, ErrForestExists
		}
		return 0, fmt.Errorf("inserting forest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing forest: %w", err)
	}

	s.logger.Debug("created forest", "id", id, "name", forest.Name)
	return id, nil
}

// GetForest retrieves a forest by id.
// Returns ErrForestNotFound if no record exists.
func (s *SQLiteStore) GetForest(ctx context.Context, id uint64) (*Forest, error) {
	query := `
		SELECT id, name, description, created_by, created_at
		FROM forests
		WHERE id = ?
	`

	forest, err := scanForest(s.db.QueryRowContext(ctx, query, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrForestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying forest: %w", err)
	}
	return forest, nil
}

// ListForests returns all forests ordered by id.
func (s *SQLiteStore) ListForests(ctx context.Context) ([]*Forest, error) {
	query := `
		SELECT id, name, description, created_by, created_at
		FROM forests
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying forests: %w", err)
	}
	defer rows.Close()

	var forests []*Forest
	for rows.Next() {
		forest, err := scanForest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning forest: %w", err)
		}
		forests = append(forests, forest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating forests: %w", err)
	}

	return forests, nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanForest(row scanner) (*Forest, error) {
	var forest Forest
	var id, createdAt int64

	if err := row.Scan(&id, &forest.Name, &forest.Description, &forest.CreatedBy, &createdAt); err != nil {
		return nil, err
	}

	forest.ID = uint64(id)
	forest.CreatedAt = uint64(createdAt)
	return &forest, nil
}
