package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"mandirdaan/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool *pgxpool.Pool
}

// SetupTestDB connects to TEST_DATABASE_URL and applies migrations. The
// calling test is skipped when no database is configured. The pool is closed
// after every other cleanup registered by the test has run.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := database.RunMigrations(ctx, connString); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	pool, err := database.NewPool(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	t.Cleanup(pool.Close)

	return &TestDB{Pool: pool}
}

// SetupTestTenant creates a mandir and removes it, with everything it owns,
// when the test finishes.
func SetupTestTenant(t *testing.T, db *TestDB, name string) uuid.UUID {
	t.Helper()

	tenantID := uuid.New()
	query := `
		INSERT INTO mandirs (id, name, phone_number, contact_person, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.Pool.Exec(context.Background(), query, tenantID, name, "9990001111", "Test", time.Now())
	if err != nil {
		t.Fatalf("Failed to create test mandir: %v", err)
	}

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM mandirs WHERE id = $1`, tenantID)
	})
	return tenantID
}
