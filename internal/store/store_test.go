// ABOUTME: Shared test setup for store package tests
// ABOUTME: Provides a temporary SQLite store and small fixture helpers

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// mustCreateForest inserts a forest and returns the allocated id.
func mustCreateForest(t *testing.T, s *SQLiteStore, name string) uint64 {
	t.Helper()
	id, err := s.CreateForest(context.Background(), &Forest{
		Name:      name,
		CreatedBy: "creator-1",
		CreatedAt: 1,
	})
	require.NoError(t, err)
	return id
}

// mustCreateMilestone inserts a milestone in the given forest and returns the
// allocated id.
func mustCreateMilestone(t *testing.T, s *SQLiteStore, forestID uint64, title string) uint64 {
	t.Helper()
	id, err := s.CreateMilestone(context.Background(), &Milestone{
		Title:      title,
		Difficulty: 1,
		ForestID:   forestID,
		CreatedBy:  "creator-1",
		CreatedAt:  1,
	})
	require.NoError(t, err)
	return id
}
