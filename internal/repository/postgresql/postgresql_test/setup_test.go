package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
)

// TestDatabaseSetup holds a migrated connection to TEST_DATABASE_URL.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects, applies the schema and truncates every table.
// Tests are skipped when TEST_DATABASE_URL is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 5, MinConns: 1})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(db.Close)

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := setup.TruncateAllTables(ctx); err != nil {
		t.Fatalf("failed to truncate test database: %v", err)
	}
	return setup
}

func (s *TestDatabaseSetup) migrate(ctx context.Context) error {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", "001_init.sql")
	schema, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, string(schema))
	return err
}

// TruncateAllTables removes all rows from every table
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"revoked_tokens",
		"notification_preferences",
		"notifications",
		"project_proposal_members",
		"project_proposals",
		"holidays",
		"leave_requests",
		"attendance_entries",
		"attendance_records",
		"employees",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}
