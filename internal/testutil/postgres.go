//go:build integration

package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	containerUser     = "enumsync"
	containerPassword = "enumsync"
	containerDB       = "enumsync_test"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// postgresURL returns POSTGRES_URL, or the URL of a shared container started
// on first use.
func postgresURL(t *testing.T) string {
	t.Helper()

	if url := os.Getenv("POSTGRES_URL"); url != "" {
		return url
	}

	containerOnce.Do(func() {
		ctx := context.Background()
		req := testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     containerUser,
				"POSTGRES_PASSWORD": containerPassword,
				"POSTGRES_DB":       containerDB,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(2*time.Minute),
			),
		}
		c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			containerErr = fmt.Errorf("failed to start postgres container: %w", err)
			return
		}
		host, err := c.Host(ctx)
		if err != nil {
			containerErr = err
			return
		}
		port, err := c.MappedPort(ctx, "5432/tcp")
		if err != nil {
			containerErr = err
			return
		}
		containerURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			containerUser, containerPassword, host, port.Port(), containerDB)
	})

	if containerErr != nil {
		t.Skipf("POSTGRES_URL not set and no container available: %v", containerErr)
	}
	return containerURL
}

// SetupPostgres connects to a PostgreSQL test database and returns the
// connection together with a fresh schema that is the only entry on its
// search_path. The pool is limited to one connection, matching the single
// ambient connection the syncer expects. The schema is dropped on cleanup.
func SetupPostgres(t *testing.T) (*sql.DB, string) {
	t.Helper()

	url := postgresURL(t)

	setupDB, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := setupDB.Ping(); err != nil {
		setupDB.Close()
		t.Fatalf("failed to ping postgres: %v", err)
	}

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		setupDB.Close()
		t.Fatalf("failed to generate random schema name: %v", err)
	}
	schema := "test_" + hex.EncodeToString(randomBytes)

	if _, err := setupDB.Exec("CREATE SCHEMA " + schema); err != nil {
		setupDB.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}
	setupDB.Close()

	separator := "&"
	if !strings.Contains(url, "?") {
		separator = "?"
	}
	db, err := sql.Open("postgres", url+separator+"search_path="+schema)
	if err != nil {
		t.Fatalf("failed to open postgres connection with schema: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres with schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		cleanupDB, err := sql.Open("postgres", url)
		if err == nil {
			_, _ = cleanupDB.Exec("DROP SCHEMA IF EXISTS " + schema + " CASCADE")
			cleanupDB.Close()
		}
	})

	return db, schema
}

// AssertEnumValues checks an enum's labels in storage order.
func AssertEnumValues(t *testing.T, db *sql.DB, schema, name string, want []string) {
	t.Helper()

	got := QueryStrings(t, db, `
		SELECT e.enumlabel
		FROM pg_catalog.pg_enum e
		JOIN pg_catalog.pg_type t ON t.oid = e.enumtypid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1 AND t.typname = $2
		ORDER BY e.enumsortorder
	`, schema, name)
	if !slices.Equal(got, want) {
		t.Errorf("enum %s.%s values = %v, want %v", schema, name, got, want)
	}
}

// AssertTypeNotExists checks that no type with the given name exists.
func AssertTypeNotExists(t *testing.T, db *sql.DB, schema, name string) {
	t.Helper()

	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM pg_catalog.pg_type t
			JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
			WHERE n.nspname = $1 AND t.typname = $2
		)
	`, schema, name).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check type: %v", err)
	}
	if exists {
		t.Errorf("expected type %s.%s to not exist, but it does", schema, name)
	}
}
