package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	poolOnce  sync.Once
	testPool  *pgxpool.Pool
	poolError error
)

// getTestPool returns a pool with the schema applied. It uses PG_URL when set,
// otherwise a throwaway Postgres container. Tests skip unless REFSYNC_INTEGRATION is set.
func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() || os.Getenv("REFSYNC_INTEGRATION") == "" {
		t.Skip("Skipping integration test (set REFSYNC_INTEGRATION=1 to run)")
	}

	poolOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		pgURL := os.Getenv("PG_URL")
		if pgURL == "" {
			pgURL, poolError = startPostgres(ctx)
			if poolError != nil {
				return
			}
		}

		testPool, poolError = pgxpool.New(ctx, pgURL)
		if poolError != nil {
			return
		}

		schema, err := os.ReadFile("../../sql/create_tables.sql")
		if err != nil {
			poolError = fmt.Errorf("failed to read schema: %w", err)
			return
		}
		if _, err := testPool.Exec(ctx, string(schema)); err != nil {
			poolError = fmt.Errorf("failed to apply schema: %w", err)
		}
	})

	if poolError != nil {
		t.Fatalf("Postgres unavailable: %v", poolError)
	}
	return testPool
}

func startPostgres(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "refsync",
			"POSTGRES_PASSWORD": "refsync",
			"POSTGRES_DB":       "refsync",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return "", fmt.Errorf("get postgres host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		container.Terminate(ctx)
		return "", fmt.Errorf("get postgres port: %w", err)
	}

	return fmt.Sprintf("postgres://refsync:refsync@%s:%s/refsync?sslmode=disable", host, port.Port()), nil
}
