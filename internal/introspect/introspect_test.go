package introspect

import (
	"context"
	"testing"
)

func TestEmptySnapshot(t *testing.T) {
	snap := Empty()
	if snap.Len() != 0 {
		t.Errorf("Len() = %d, want 0", snap.Len())
	}
	if snap.HasTable("Users") {
		t.Error("HasTable() = true on empty snapshot")
	}
	if snap.HasColumn("Users", "id") {
		t.Error("HasColumn() = true on empty snapshot")
	}
	if snap.HasIndex("Users", "idx_Users_email") {
		t.Error("HasIndex() = true on empty snapshot")
	}
	if snap.HasForeignKey("Users", "fk_Users_company_id") {
		t.Error("HasForeignKey() = true on empty snapshot")
	}
}

func TestSnapshotAccessors(t *testing.T) {
	snap := Empty()
	info := snap.table("Users")
	info.Columns["id"] = "integer"
	info.Columns["email"] = "character varying"
	info.Indexes["uniq_Users_email"] = true
	info.ForeignKeys["fk_Users_company_id"] = true

	if !snap.HasTable("Users") {
		t.Error("HasTable(Users) = false")
	}
	if !snap.HasColumn("Users", "email") {
		t.Error("HasColumn(Users, email) = false")
	}
	if snap.HasColumn("Users", "missing") {
		t.Error("HasColumn(Users, missing) = true")
	}
	if !snap.HasIndex("Users", "uniq_Users_email") {
		t.Error("HasIndex() = false")
	}
	if !snap.HasForeignKey("Users", "fk_Users_company_id") {
		t.Error("HasForeignKey() = false")
	}
	if got := snap.ColumnType("Users", "email"); got != "character varying" {
		t.Errorf("ColumnType() = %q", got)
	}
	if got := snap.Tables(); len(got) != 1 || got[0] != "Users" {
		t.Errorf("Tables() = %v", got)
	}
}

func TestLoaderFor(t *testing.T) {
	for _, name := range []string{"postgres", "postgresql", "mysql", "sqlite", "sqlite3", "sqlserver", "mssql"} {
		if loaderFor(name) == nil {
			t.Errorf("loaderFor(%q) = nil", name)
		}
	}
	if loaderFor("oracle") != nil {
		t.Error("loaderFor(oracle) should be nil")
	}
}

func TestNewWithNilConnection(t *testing.T) {
	snap := New(context.Background(), nil, "postgres")
	if snap == nil || snap.Len() != 0 {
		t.Error("New() with nil db should return an empty snapshot")
	}
}

func TestFKConstraintPattern(t *testing.T) {
	ddl := `CREATE TABLE "Users" (
  "id" INTEGER PRIMARY KEY AUTOINCREMENT,
  "company_id" INTEGER NOT NULL,
  CONSTRAINT "fk_Users_company_id" FOREIGN KEY ("company_id") REFERENCES "Companies" ("id")
)`
	matches := fkConstraintPattern.FindAllStringSubmatch(ddl, -1)
	if len(matches) != 1 || matches[0][1] != "fk_Users_company_id" {
		t.Errorf("pattern matches = %v", matches)
	}

	if got := fkConstraintPattern.FindAllStringSubmatch("CREATE TABLE x (id INTEGER)", -1); len(got) != 0 {
		t.Errorf("pattern matched plain DDL: %v", got)
	}
}
