//go:build integration

package introspect

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB creates a new in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustExec(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}

func TestSQLiteSnapshot(t *testing.T) {
	db := setupTestDB(t)
	mustExec(t, db,
		`CREATE TABLE "Companies" (
  "id" INTEGER PRIMARY KEY AUTOINCREMENT,
  "name" TEXT NOT NULL
)`,
		`CREATE TABLE "Users" (
  "id" INTEGER PRIMARY KEY AUTOINCREMENT,
  "email" TEXT NOT NULL,
  "company_id" INTEGER NOT NULL,
  CONSTRAINT "fk_Users_company_id" FOREIGN KEY ("company_id") REFERENCES "Companies" ("id")
)`,
		`CREATE UNIQUE INDEX "uniq_Users_email" ON "Users" ("email")`,
	)

	snap := New(context.Background(), db, "sqlite")

	if snap.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (tables: %v)", snap.Len(), snap.Tables())
	}
	if !snap.HasTable("Users") || !snap.HasTable("Companies") {
		t.Errorf("tables = %v", snap.Tables())
	}
	if !snap.HasColumn("Users", "email") || !snap.HasColumn("Users", "company_id") {
		t.Error("missing Users columns")
	}
	if snap.HasColumn("Users", "nope") {
		t.Error("HasColumn reported a missing column")
	}
	if got := snap.ColumnType("Companies", "name"); got != "TEXT" {
		t.Errorf("ColumnType() = %q, want TEXT", got)
	}
	if !snap.HasIndex("Users", "uniq_Users_email") {
		t.Error("missing index uniq_Users_email")
	}
	if !snap.HasForeignKey("Users", "fk_Users_company_id") {
		t.Error("missing foreign key fk_Users_company_id")
	}
}

func TestSQLiteSnapshotEmptyDatabase(t *testing.T) {
	db := setupTestDB(t)
	snap := New(context.Background(), db, "sqlite")
	if snap.Len() != 0 {
		t.Errorf("Len() = %d, want 0", snap.Len())
	}
}

func TestSQLiteTableExists(t *testing.T) {
	db := setupTestDB(t)
	mustExec(t, db, `CREATE TABLE "anvil_migrations" ("id" INTEGER PRIMARY KEY AUTOINCREMENT)`)

	exists, err := TableExists(context.Background(), db, "sqlite", "anvil_migrations")
	if err != nil {
		t.Fatalf("TableExists() error: %v", err)
	}
	if !exists {
		t.Error("TableExists() = false for existing table")
	}

	exists, err = TableExists(context.Background(), db, "sqlite", "nope")
	if err != nil {
		t.Fatalf("TableExists() error: %v", err)
	}
	if exists {
		t.Error("TableExists() = true for missing table")
	}
}

func TestSnapshotDegradesOnClosedConnection(t *testing.T) {
	db := setupTestDB(t)
	db.Close()

	snap := New(context.Background(), db, "sqlite")
	if snap.Len() != 0 {
		t.Error("closed connection should yield an empty snapshot")
	}
}
