package engine

import (
	"testing"

	"github.com/anvildb/anvil/internal/ast"
)

// table builds a minimal TableDef with FKs to the given targets.
func table(name string, refs ...string) *ast.TableDef {
	t := &ast.TableDef{
		Name:    name,
		Columns: []*ast.ColumnDef{{Name: "id", Type: ast.TypeInteger, PrimaryKey: true}},
	}
	for _, ref := range refs {
		t.ForeignKeys = append(t.ForeignKeys, &ast.ForeignKeyDef{
			Column:   "ref_id",
			RefTable: ref,
		})
	}
	return t
}

func mustModel(t *testing.T, tables ...*ast.TableDef) *ast.SchemaModel {
	t.Helper()
	m, err := ast.BuildSchemaModel(tables)
	if err != nil {
		t.Fatalf("BuildSchemaModel() error: %v", err)
	}
	return m
}

// position returns the index of name in order, or -1.
func position(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}

func TestSortTablesAcyclic(t *testing.T) {
	// Users -> Companies, Orders -> Users, Items -> Orders.
	m := mustModel(t,
		table("Items", "Orders"),
		table("Orders", "Users"),
		table("Users", "Companies"),
		table("Companies"),
	)

	order := SortTables(m)
	if len(order) != 4 {
		t.Fatalf("order = %v, want 4 tables", order)
	}

	pairs := [][2]string{
		{"Companies", "Users"},
		{"Users", "Orders"},
		{"Orders", "Items"},
	}
	for _, p := range pairs {
		if position(order, p[0]) >= position(order, p[1]) {
			t.Errorf("%s should precede %s in %v", p[0], p[1], order)
		}
	}
}

func TestSortTablesSelfReference(t *testing.T) {
	m := mustModel(t, table("Employees", "Employees"))

	order := SortTables(m)
	if len(order) != 1 || order[0] != "Employees" {
		t.Errorf("order = %v, want exactly [Employees]", order)
	}
}

func TestSortTablesCycleAppendedInDeclarationOrder(t *testing.T) {
	// A <-> B mutual cycle, C independent.
	m := mustModel(t,
		table("A", "B"),
		table("B", "A"),
		table("C"),
	)

	order := SortTables(m)
	if len(order) != 3 {
		t.Fatalf("order = %v, want 3 tables", order)
	}
	if order[0] != "C" {
		t.Errorf("FK-less table should be first, got %v", order)
	}
	if order[1] != "A" || order[2] != "B" {
		t.Errorf("cycle should keep declaration order, got %v", order)
	}
}

func TestSortTablesExternalTargetDoesNotBlock(t *testing.T) {
	m := mustModel(t, table("Users", "ExternalAudit"))

	order := SortTables(m)
	if len(order) != 1 || order[0] != "Users" {
		t.Errorf("order = %v", order)
	}
}

func TestSortTablesEveryTableOnce(t *testing.T) {
	m := mustModel(t,
		table("Employees", "Employees", "Companies"),
		table("Companies"),
	)

	order := SortTables(m)
	seen := map[string]int{}
	for _, name := range order {
		seen[name]++
	}
	for name, count := range seen {
		if count != 1 {
			t.Errorf("table %s appears %d times", name, count)
		}
	}
	if len(order) != 2 {
		t.Errorf("order = %v", order)
	}
}

func TestReverseOrder(t *testing.T) {
	got := ReverseOrder([]string{"a", "b", "c"})
	if got[0] != "c" || got[1] != "b" || got[2] != "a" {
		t.Errorf("ReverseOrder() = %v", got)
	}
}
