//go:build postgres

package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// Run with: CLUTCH_TEST_POSTGRES=postgres://... go test -tags postgres ./repository
func TestPostgres_Contract(t *testing.T) {
	dsn := os.Getenv("CLUTCH_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("CLUTCH_TEST_POSTGRES is not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewRepo(db)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(context.Background()))

	testRepositoryContract(t, repo)
}
