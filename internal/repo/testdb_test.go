package repo_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repo.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, repo.ApplyMigrations(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}
