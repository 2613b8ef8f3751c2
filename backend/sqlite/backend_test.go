package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/mwantia/vfs/backend"
	"github.com/mwantia/vfs/backend/backendtest"
	"github.com/mwantia/vfs/backend/sqlite"
)

func fixture(t *testing.T) *sqlite.Backend {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("CREATE TABLE: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO users (name) VALUES (?), (?)`, "alice", "bob"); err != nil {
		t.Fatalf("INSERT: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close fixture db: %v", err)
	}

	b, err := sqlite.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestSQLiteBackend_UniversalInvariants(t *testing.T) {
	ctx := t.Context()
	b := fixture(t)

	backendtest.AssertUniversalInvariants(t, ctx, b, []string{"users", "_schema.sql"})
}

func TestSQLiteBackend_TablesBecomeDirectories(t *testing.T) {
	ctx := t.Context()
	b := fixture(t)

	backendtest.AssertChildren(t, ctx, b, nil, []string{"users"})
	backendtest.AssertDir(t, ctx, b, []string{"users"})
}

func TestSQLiteBackend_RowsAndSchema(t *testing.T) {
	ctx := t.Context()
	b := fixture(t)

	children, err := b.List(ctx, []string{"users"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("List(users) = %v, want 3 entries (schema + 2 rows)", children)
	}

	schema, err := b.Get(ctx, []string{"users", "_schema.sql"})
	if err != nil {
		t.Fatalf("Get schema: %v", err)
	}
	if len(schema) == 0 {
		t.Fatal("expected non-empty schema body")
	}

	info, err := b.Info(ctx, []string{"users", "_schema.sql"})
	if err != nil {
		t.Fatalf("Info schema: %v", err)
	}
	if info.ContentType != "application/sql" {
		t.Fatalf("ContentType = %q, want application/sql", info.ContentType)
	}

	row, err := b.Get(ctx, []string{"users", "row_1.json"})
	if err != nil {
		t.Fatalf("Get row_1.json: %v", err)
	}
	if len(row) == 0 {
		t.Fatal("expected non-empty row body")
	}
}

func TestSQLiteBackend_ErrorsAfterClose(t *testing.T) {
	ctx := context.Background()
	b := fixture(t)

	if err := b.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := b.Info(ctx, nil); err == nil || backend.IsNotFound(err) {
		t.Fatalf("Info after Close: expected a non-NotFound error, got %v", err)
	}
}
