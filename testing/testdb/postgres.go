package testdb

import (
	"context"
	"strings"
	"sync"
	"testing"

	"institute-service/internal/db"
	"institute-service/internal/schema"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
)

var (
	sharedContainer *PostgresContainer
	sharedOnce      sync.Once
	sharedErr       error
	migrateOnce     sync.Once
)

// PostgresContainer wraps the postgres testcontainer
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
}

// SetupSharedPostgres starts one PostgreSQL container per test binary and applies the schema.
// Tests using it cannot run in parallel; call CleanupTables at the start of each subtest.
// Skipped under -short.
//
//	pg := testdb.SetupSharedPostgres(t)
//	t.Run("Case", func(t *testing.T) {
//	    testdb.CleanupTables(t, pg.DB)
//	})
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}

	sharedOnce.Do(func() {
		ctx := context.Background()
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			),
		)
		if err != nil {
			sharedErr = err
			return
		}

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			sharedErr = err
			return
		}

		database, err := db.NewWithDSN(connStr)
		if err != nil {
			sharedErr = err
			return
		}

		sharedContainer = &PostgresContainer{
			Container: pgContainer,
			DB:        database,
			DSN:       connStr,
		}
	})
	require.NoError(t, sharedErr, "failed to start postgres container")

	migrateOnce.Do(func() {
		sharedErr = db.RunMigrations(context.Background(), sharedContainer.DB, schema.Models(), schema.Statements()...)
	})
	require.NoError(t, sharedErr, "failed to migrate test database")

	return sharedContainer
}

// CleanupTables truncates the given tables, or every application table when none are given.
func CleanupTables(t *testing.T, database *bun.DB, tables ...string) {
	t.Helper()
	if len(tables) == 0 {
		tables = schema.Tables()
	}

	_, err := database.ExecContext(context.Background(), "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err, "failed to truncate tables: %v", tables)
}
