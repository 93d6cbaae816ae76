package engine

import (
	"testing"

	"github.com/anvildb/anvil/internal/ast"
	"github.com/anvildb/anvil/internal/introspect"
	"github.com/anvildb/anvil/internal/model"
)

// companyUserModel is the canonical two-table model: User references
// Company, so Companies must be created first.
func companyUserModel(t *testing.T) *ast.SchemaModel {
	t.Helper()
	m, err := model.Analyze([]model.EntityDef{
		{
			Name:   "Company",
			Fields: []model.FieldDef{{Name: "Name", Type: "string", Required: true}},
		},
		{
			Name: "User",
			Fields: []model.FieldDef{
				{Name: "Email", Type: "string", Required: true},
				{Name: "Company", Kind: model.KindReference, RefEntity: "Company"},
			},
			Indexes: []model.IndexDecl{{Fields: []string{"Email"}, Unique: true}},
		},
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	return m
}

// seedTable registers an existing table in the snapshot.
func seedTable(snap *introspect.Snapshot, name string, columns, indexes, fks []string) {
	snap.AddTable(name)
	for _, c := range columns {
		snap.AddColumn(name, c, "integer")
	}
	for _, i := range indexes {
		snap.AddIndex(name, i)
	}
	for _, f := range fks {
		snap.AddForeignKey(name, f)
	}
}

func opTypes(ops []ast.Operation) []ast.OpType {
	types := make([]ast.OpType, len(ops))
	for i, op := range ops {
		types[i] = op.Type()
	}
	return types
}

func TestPlanEmptySnapshotCreatesEverything(t *testing.T) {
	cs := Plan(companyUserModel(t), introspect.Empty())

	want := []ast.OpType{
		ast.OpCreateTable,   // Companies
		ast.OpCreateTable,   // Users
		ast.OpCreateIndex,   // uniq_Users_email
		ast.OpAddForeignKey, // fk_Users_company_id
	}
	got := opTypes(cs.Up)
	if len(got) != len(want) {
		t.Fatalf("up ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("up ops = %v, want %v", got, want)
		}
	}

	if cs.Up[0].Table() != "Companies" || cs.Up[1].Table() != "Users" {
		t.Errorf("Companies must be created before Users: %v, %v", cs.Up[0].Table(), cs.Up[1].Table())
	}

	fk := cs.Up[3].(*ast.AddForeignKey)
	if fk.RefColumn != "id" {
		t.Errorf("RefColumn should default to target primary key, got %q", fk.RefColumn)
	}
}

func TestPlanDownIsReverse(t *testing.T) {
	cs := Plan(companyUserModel(t), introspect.Empty())

	if len(cs.Down) != 2 {
		t.Fatalf("down ops = %v, want 2 drops", opTypes(cs.Down))
	}
	if cs.Down[0].Type() != ast.OpDropTable || cs.Down[0].Table() != "Users" {
		t.Errorf("down[0] = %v %s, want DropTable Users", cs.Down[0].Type(), cs.Down[0].Table())
	}
	if cs.Down[1].Type() != ast.OpDropTable || cs.Down[1].Table() != "Companies" {
		t.Errorf("down[1] = %v %s, want DropTable Companies", cs.Down[1].Type(), cs.Down[1].Table())
	}
}

func TestPlanExistingTableNeverCreates(t *testing.T) {
	m := companyUserModel(t)

	snap := introspect.Empty()
	seedTable(snap, "Companies", []string{"id", "name"}, nil, nil)
	seedTable(snap, "Users",
		[]string{"id", "email", "company_id"},
		[]string{"uniq_Users_email"},
		[]string{"fk_Users_company_id"})

	cs := Plan(m, snap)
	for _, op := range cs.Up {
		if op.Type() == ast.OpCreateTable {
			t.Errorf("planner emitted CreateTable for existing table %s", op.Table())
		}
	}
	if !cs.IsEmpty() {
		t.Errorf("unchanged model should plan nothing, got up=%v down=%v", opTypes(cs.Up), opTypes(cs.Down))
	}
}

func TestPlanAddsOnlyMissingColumns(t *testing.T) {
	m := companyUserModel(t)

	snap := introspect.Empty()
	seedTable(snap, "Companies", []string{"id", "name"}, nil, nil)
	// Users exists but lacks company_id; index and FK already present.
	seedTable(snap, "Users",
		[]string{"id", "email"},
		[]string{"uniq_Users_email"},
		[]string{"fk_Users_company_id"})

	cs := Plan(m, snap)
	if len(cs.Up) != 1 {
		t.Fatalf("up ops = %v, want exactly one AddColumn", opTypes(cs.Up))
	}
	add, ok := cs.Up[0].(*ast.AddColumn)
	if !ok || add.Column.Name != "company_id" {
		t.Fatalf("up[0] = %+v, want AddColumn company_id", cs.Up[0])
	}

	if len(cs.Down) != 1 {
		t.Fatalf("down ops = %v, want one DropColumn", opTypes(cs.Down))
	}
	drop, ok := cs.Down[0].(*ast.DropColumn)
	if !ok || drop.Name != "company_id" {
		t.Errorf("down[0] = %+v, want DropColumn company_id", cs.Down[0])
	}
}

func TestPlanDiffsIndexesAndForeignKeysByName(t *testing.T) {
	m := companyUserModel(t)

	snap := introspect.Empty()
	seedTable(snap, "Companies", []string{"id", "name"}, nil, nil)
	// All columns present, but index and FK missing.
	seedTable(snap, "Users", []string{"id", "email", "company_id"}, nil, nil)

	cs := Plan(m, snap)
	got := opTypes(cs.Up)
	want := []ast.OpType{ast.OpCreateIndex, ast.OpAddForeignKey}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("up ops = %v, want %v", got, want)
	}

	// Down mirrors in reverse: drop FK before index.
	gotDown := opTypes(cs.Down)
	if len(gotDown) != 2 || gotDown[0] != ast.OpDropForeignKey || gotDown[1] != ast.OpDropIndex {
		t.Errorf("down ops = %v, want [DropForeignKey DropIndex]", gotDown)
	}
}

func TestPlanOmitsUnresolvableForeignKey(t *testing.T) {
	tables := []*ast.TableDef{
		{
			Name: "Orders",
			Columns: []*ast.ColumnDef{
				{Name: "id", Type: ast.TypeInteger, PrimaryKey: true, AutoIncrement: true},
				{Name: "customer_id", Type: ast.TypeInteger},
			},
			ForeignKeys: []*ast.ForeignKeyDef{
				{Column: "customer_id", RefTable: "Customers"}, // not in model
			},
		},
	}
	m, err := ast.BuildSchemaModel(tables)
	if err != nil {
		t.Fatalf("BuildSchemaModel() error: %v", err)
	}

	cs := Plan(m, introspect.Empty())
	for _, op := range cs.Up {
		if op.Type() == ast.OpAddForeignKey {
			t.Error("unresolvable foreign key should be omitted")
		}
	}
	// The table itself still emits.
	if len(cs.Up) != 1 || cs.Up[0].Type() != ast.OpCreateTable {
		t.Errorf("up ops = %v, want [CreateTable]", opTypes(cs.Up))
	}
}

func TestPlanSelfReference(t *testing.T) {
	m, err := model.Analyze([]model.EntityDef{
		{Name: "Employee", Fields: []model.FieldDef{
			{Name: "FullName", Type: "string"},
			{Name: "Manager", Kind: model.KindReference, RefEntity: "Employee"},
		}},
	})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	cs := Plan(m, introspect.Empty())
	got := opTypes(cs.Up)
	if len(got) != 2 || got[0] != ast.OpCreateTable || got[1] != ast.OpAddForeignKey {
		t.Fatalf("up ops = %v, want [CreateTable AddForeignKey]", got)
	}
	fk := cs.Up[1].(*ast.AddForeignKey)
	if fk.RefTable != "Employees" || fk.TableName != "Employees" {
		t.Errorf("self-reference FK = %+v", fk)
	}
}
