package testdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mfai/ambassador/api/internal/database"
)

// TestDB is a connection to a throwaway namespace with migrations applied
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string

	t      *testing.T
	closed atomic.Bool
}

var (
	schemaOnce sync.Once
	schema     []string
	schemaErr  error
)

// configFromEnv reads TEST_DB_* variables. ok is false when TEST_DB_HOST is
// unset.
func configFromEnv() (database.Config, bool) {
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		return database.Config{}, false
	}
	return database.Config{
		Host:     host,
		Port:     envOr("TEST_DB_PORT", "8000"),
		User:     envOr("TEST_DB_USER", "root"),
		Password: envOr("TEST_DB_PASSWORD", "root"),
	}, true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// namespaceFor derives a valid, unique namespace name
func namespaceFor() string {
	return "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// migrationsDir returns AMBASSADOR_ROOT/migrations when set, otherwise the
// first migrations directory found walking up from the working directory.
func migrationsDir() (string, error) {
	if root := os.Getenv("AMBASSADOR_ROOT"); root != "" {
		return filepath.Join(root, "migrations"), nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("migrations directory not found")
		}
		dir = parent
	}
}

// loadSchema reads migrations/*.surql in lexical order, skipping seed.surql
func loadSchema() ([]string, error) {
	schemaOnce.Do(func() {
		dir, err := migrationsDir()
		if err != nil {
			schemaErr = err
			return
		}

		files, err := filepath.Glob(filepath.Join(dir, "*.surql"))
		if err != nil {
			schemaErr = err
			return
		}
		slices.Sort(files)

		for _, f := range files {
			if filepath.Base(f) == "seed.surql" {
				continue
			}
			content, err := os.ReadFile(f)
			if err != nil {
				schemaErr = fmt.Errorf("reading %s: %w", filepath.Base(f), err)
				return
			}
			schema = append(schema, string(content))
		}
	})
	return schema, schemaErr
}

// New connects to a fresh namespace and applies the schema. The test is
// skipped when TEST_DB_HOST is unset. The namespace is removed by Close,
// which also runs automatically at test cleanup.
func New(t *testing.T) *TestDB {
	t.Helper()

	cfg, ok := configFromEnv()
	if !ok {
		t.Skip("testdb: TEST_DB_HOST not set, skipping database test")
	}
	cfg.Namespace = namespaceFor()
	cfg.Database = "test"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	tdb := &TestDB{DB: db, Namespace: cfg.Namespace, Database: cfg.Database, t: t}
	t.Cleanup(tdb.Close)

	stmts, err := loadSchema()
	if err != nil {
		t.Fatalf("testdb: failed to load migrations: %v", err)
	}
	for i, stmt := range stmts {
		if err := db.Execute(ctx, stmt, nil); err != nil {
			t.Fatalf("testdb: migration %d failed: %v", i+1, err)
		}
	}

	return tdb
}

// Close removes the namespace and disconnects. Safe to call more than once.
func (tdb *TestDB) Close() {
	if tdb.DB == nil || !tdb.closed.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, "REMOVE NAMESPACE IF EXISTS "+tdb.Namespace, nil)
	_ = tdb.DB.Close()
}

// Ctx returns a context bounded to ten seconds and cancelled when the test
// finishes.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec executes a statement and fails the test on error
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// MustQuery executes a query and fails the test on error
func (tdb *TestDB) MustQuery(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
	return results
}
