package engine

import (
	"strings"
	"testing"

	"github.com/anvildb/anvil/internal/anerr"
	"github.com/anvildb/anvil/internal/ast"
)

func sampleMigration() *Migration {
	return &Migration{
		Timestamp: "20240101000000",
		Name:      "init",
		Up: []ast.Operation{
			&ast.CreateTable{
				Name: "Users",
				Columns: []*ast.ColumnDef{
					{Name: "id", Type: ast.TypeInteger, PrimaryKey: true, AutoIncrement: true},
					{Name: "email", Type: ast.TypeString, MaxLength: 255},
				},
			},
			&ast.CreateIndex{TableName: "Users", Name: "uniq_Users_email", Columns: []string{"email"}, Unique: true},
			&ast.AddForeignKey{TableName: "Users", Name: "fk_Users_company_id", Column: "company_id", RefTable: "Companies", RefColumn: "id", OnDelete: "CASCADE"},
		},
		Down: []ast.Operation{
			&ast.DropTable{Name: "Users"},
		},
	}
}

func TestScriptRoundTrip(t *testing.T) {
	data, err := EncodeScript(sampleMigration())
	if err != nil {
		t.Fatalf("EncodeScript() error: %v", err)
	}

	text := string(data)
	for _, want := range []string{"up:", "down:", "create_table:", "create_index:", "add_foreign_key:", "drop_table:"} {
		if !strings.Contains(text, want) {
			t.Errorf("script missing %q:\n%s", want, text)
		}
	}

	up, down, err := DecodeScript(data)
	if err != nil {
		t.Fatalf("DecodeScript() error: %v", err)
	}
	if len(up) != 3 || len(down) != 1 {
		t.Fatalf("decoded up=%d down=%d", len(up), len(down))
	}

	ct, ok := up[0].(*ast.CreateTable)
	if !ok {
		t.Fatalf("up[0] = %T, want *ast.CreateTable", up[0])
	}
	if ct.Name != "Users" || len(ct.Columns) != 2 {
		t.Errorf("CreateTable = %+v", ct)
	}
	if !ct.Columns[0].AutoIncrement || !ct.Columns[0].PrimaryKey {
		t.Errorf("id column lost modifiers: %+v", ct.Columns[0])
	}
	if ct.Columns[1].MaxLength != 255 {
		t.Errorf("email MaxLength = %d", ct.Columns[1].MaxLength)
	}

	fk, ok := up[2].(*ast.AddForeignKey)
	if !ok || fk.OnDelete != "CASCADE" || fk.RefTable != "Companies" {
		t.Errorf("up[2] = %+v", up[2])
	}

	if down[0].Type() != ast.OpDropTable {
		t.Errorf("down[0] = %v", down[0].Type())
	}
}

func TestDecodeScriptEmpty(t *testing.T) {
	up, down, err := DecodeScript([]byte("up: []\ndown: []\n"))
	if err != nil {
		t.Fatalf("DecodeScript() error: %v", err)
	}
	if len(up) != 0 || len(down) != 0 {
		t.Errorf("up=%d down=%d, want empty", len(up), len(down))
	}
}

func TestDecodeScriptUnknownOperation(t *testing.T) {
	_, _, err := DecodeScript([]byte("up:\n  - explode_table:\n      name: Users\n"))
	if !anerr.Is(err, anerr.ErrScriptInvalid) {
		t.Errorf("expected %s, got %v", anerr.ErrScriptInvalid, err)
	}
}

func TestDecodeScriptInvalidYAML(t *testing.T) {
	_, _, err := DecodeScript([]byte("up: ["))
	if !anerr.Is(err, anerr.ErrScriptInvalid) {
		t.Errorf("expected %s, got %v", anerr.ErrScriptInvalid, err)
	}
}

func TestDecodeScriptRejectsInvalidOperation(t *testing.T) {
	// drop_table without a name fails validation.
	_, _, err := DecodeScript([]byte("up:\n  - drop_table: {}\n"))
	if !anerr.Is(err, anerr.ErrScriptInvalid) {
		t.Errorf("expected %s, got %v", anerr.ErrScriptInvalid, err)
	}
}
