// ABOUTME: User store methods for registered identities
// ABOUTME: Users are create-once records with an immutable role

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateUser stores a new user record.
// Returns ErrUserExists if the identity is already registered.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, name, role, registered_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		int(user.Role),
		int64(user.RegisteredAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "role", user.Role.String())
	return nil
}

// GetUser retrieves a user by identity.
// Returns ErrUserNotFound if no record exists.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, name, role, registered_at
		FROM users
		WHERE id = ?
	`

	var user User
	var role int
	var registeredAt int64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&role,
		&registeredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.Role = Role(role)
	user.RegisteredAt = uint64(registeredAt)
	return &user, nil
}
