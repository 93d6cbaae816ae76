//go:build integration

package anvil

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// relationalEntities declares a two-entity model with a reference. Only
// used for plan rendering: SQLite cannot ALTER TABLE ADD CONSTRAINT, so
// the apply tests use workflowEntities instead.
func relationalEntities() []EntityDef {
	return []EntityDef{
		{
			Name: "Company",
			Fields: []FieldDef{
				{Name: "name", Type: "string", Required: true},
			},
		},
		{
			Name:  "User",
			Audit: true,
			Fields: []FieldDef{
				{Name: "email", Type: "string", Required: true, MaxLength: 120},
				{Name: "company", Kind: KindReference, RefEntity: "Company", OnDelete: "cascade"},
			},
			Indexes: []IndexDecl{
				{Fields: []string{"email"}, Unique: true},
			},
		},
	}
}

// workflowEntities is the executable variant: columns, audit fields, and
// a unique index, but no foreign keys.
func workflowEntities() []EntityDef {
	return []EntityDef{
		{
			Name: "Company",
			Fields: []FieldDef{
				{Name: "name", Type: "string", Required: true},
			},
		},
		{
			Name:  "User",
			Audit: true,
			Fields: []FieldDef{
				{Name: "email", Type: "string", Required: true, MaxLength: 120},
			},
			Indexes: []IndexDecl{
				{Fields: []string{"email"}, Unique: true},
			},
		},
	}
}

func newTestClient(t *testing.T, entities []EntityDef) (*Client, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	client, err := New(
		WithDB(db),
		WithDialect("sqlite"),
		WithMigrationsDir(t.TempDir()),
		WithEntities(entities),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return client, db
}

func TestClientRequiresDialectWithDB(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := New(WithDB(db)); err != ErrMissingDialect {
		t.Errorf("New(WithDB) error = %v, want ErrMissingDialect", err)
	}
}

func TestClientGenerateMigration(t *testing.T) {
	client, _ := newTestClient(t, relationalEntities())
	ctx := context.Background()

	plan, err := client.GenerateMigration(ctx)
	if err != nil {
		t.Fatalf("GenerateMigration() error: %v", err)
	}
	if plan.Empty() {
		t.Fatal("expected a non-empty plan for an empty database")
	}

	// Companies must be created before Users because Users references it.
	joined := strings.Join(plan.UpSQL, "\n")
	ci := strings.Index(joined, `CREATE TABLE "Companies"`)
	ui := strings.Index(joined, `CREATE TABLE "Users"`)
	if ci < 0 || ui < 0 || ci > ui {
		t.Errorf("table order wrong in plan:\n%s", joined)
	}
	if !strings.Contains(joined, "fk_Users_company_id") {
		t.Errorf("foreign key missing from plan:\n%s", joined)
	}
}

func TestClientFullWorkflow(t *testing.T) {
	client, _ := newTestClient(t, workflowEntities())
	ctx := context.Background()

	path, err := client.AddMigration(ctx, "init")
	if err != nil {
		t.Fatalf("AddMigration() error: %v", err)
	}
	if !strings.HasSuffix(path, "_init.yaml") {
		t.Errorf("script path = %s", path)
	}

	pending, err := client.PendingMigrations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Name != "init" {
		t.Fatalf("PendingMigrations() = %+v", pending)
	}

	stmts, err := client.PlanSQL(ctx)
	if err != nil {
		t.Fatalf("PlanSQL() error: %v", err)
	}
	if len(stmts) == 0 {
		t.Fatal("PlanSQL() returned no statements")
	}

	applied, err := client.UpdateDatabase(ctx, "")
	if err != nil {
		t.Fatalf("UpdateDatabase() error: %v", err)
	}
	if len(applied) != 1 {
		t.Fatalf("UpdateDatabase() = %v", applied)
	}

	// Model and database now agree: the next diff must be empty.
	plan, err := client.GenerateMigration(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Empty() {
		t.Errorf("expected empty plan after apply, got:\n%s", strings.Join(plan.UpSQL, "\n"))
	}

	all, err := client.AllMigrations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || !all[0].Applied || all[0].AppliedAt.IsZero() {
		t.Fatalf("AllMigrations() = %+v", all)
	}

	summary, err := client.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Applied != 1 || summary.Pending != 0 {
		t.Errorf("Status() = applied=%d pending=%d", summary.Applied, summary.Pending)
	}

	rolled, err := client.RollbackMigration(ctx, 1)
	if err != nil {
		t.Fatalf("RollbackMigration() error: %v", err)
	}
	if len(rolled) != 1 {
		t.Fatalf("RollbackMigration() = %v", rolled)
	}

	pending, err = client.PendingMigrations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Errorf("PendingMigrations() = %d after rollback, want 1", len(pending))
	}
}

func TestClientIncrementalMigration(t *testing.T) {
	entities := workflowEntities()
	client, db := newTestClient(t, entities)
	ctx := context.Background()

	if _, err := client.AddMigration(ctx, "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := client.UpdateDatabase(ctx, ""); err != nil {
		t.Fatal(err)
	}

	// Grow the model: the next migration must only add the new column.
	entities[0].Fields = append(entities[0].Fields, FieldDef{Name: "website", Type: "string"})
	client2, err := New(
		WithDB(db),
		WithDialect("sqlite"),
		WithMigrationsDir(client.config.MigrationsDir),
		WithEntities(entities),
	)
	if err != nil {
		t.Fatal(err)
	}

	plan, err := client2.GenerateMigration(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.UpSQL) != 1 || !strings.Contains(plan.UpSQL[0], "ADD COLUMN") {
		t.Fatalf("incremental plan = %v", plan.UpSQL)
	}
	if !strings.Contains(plan.UpSQL[0], "website") {
		t.Errorf("plan does not touch the new column: %s", plan.UpSQL[0])
	}

	if _, err := client2.AddMigration(ctx, "add_website"); err != nil {
		t.Fatal(err)
	}
	if _, err := client2.UpdateDatabase(ctx, ""); err != nil {
		t.Fatal(err)
	}

	var count int
	row := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pragma_table_info('Companies') WHERE name = 'website'`)
	if err := row.Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Error("website column not present after incremental migration")
	}
}

func TestClientAddEmptyMigration(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	if _, err := client.AddEmptyMigration("placeholder"); err != nil {
		t.Fatalf("AddEmptyMigration() error: %v", err)
	}

	pending, err := client.PendingMigrations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("PendingMigrations() = %d", len(pending))
	}

	// Applying an empty script records it without touching the schema.
	applied, err := client.UpdateDatabase(ctx, "")
	if err != nil {
		t.Fatalf("UpdateDatabase() error: %v", err)
	}
	if len(applied) != 1 {
		t.Errorf("UpdateDatabase() = %v", applied)
	}
}

func TestClientRemoveMigration(t *testing.T) {
	client, _ := newTestClient(t, nil)

	if _, err := client.AddEmptyMigration("scratch"); err != nil {
		t.Fatal(err)
	}
	removed, err := client.RemoveMigration("scratch")
	if err != nil {
		t.Fatalf("RemoveMigration() error: %v", err)
	}
	if len(removed) != 1 {
		t.Errorf("RemoveMigration() = %v", removed)
	}
}

func TestClientCloseKeepsBorrowedDB(t *testing.T) {
	client, db := newTestClient(t, nil)

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	// The connection was supplied by the caller, so it must stay open.
	if err := db.Ping(); err != nil {
		t.Errorf("borrowed connection closed by client: %v", err)
	}
}
