package dialect

import (
	"strings"

	"github.com/anvildb/anvil/internal/ast"
)

// sqliteDialect implements Dialect for SQLite. Types follow SQLite's
// affinity model: strings and timestamps are TEXT, booleans INTEGER.
type sqliteDialect struct{}

// SQLite returns the SQLite dialect.
func SQLite() Dialect {
	return &sqliteDialect{}
}

func (d *sqliteDialect) Name() string {
	return "sqlite"
}

func (d *sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *sqliteDialect) Placeholder(index int) string {
	return "?"
}

func (d *sqliteDialect) ColumnType(col *ast.ColumnDef) string {
	switch col.Type {
	case ast.TypeInteger:
		return "INTEGER"
	case ast.TypeString:
		return "TEXT"
	case ast.TypeFloat:
		return "REAL"
	case ast.TypeBoolean:
		return "INTEGER"
	case ast.TypeDateTime:
		return "TEXT"
	default:
		return strings.ToUpper(string(col.Type))
	}
}

func (d *sqliteDialect) ColumnDefSQL(col *ast.ColumnDef) string {
	if col.AutoIncrement {
		// AUTOINCREMENT is only legal on INTEGER PRIMARY KEY.
		return d.QuoteIdent(col.Name) + " INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return buildColumnDefSQL(col, d.QuoteIdent, d.ColumnType(col), true)
}

func (d *sqliteDialect) CreateTableSQL(op *ast.CreateTable) (string, error) {
	return buildCreateTableSQL(op, d.QuoteIdent, d.ColumnDefSQL)
}

func (d *sqliteDialect) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

func (d *sqliteDialect) AddColumnSQL(op *ast.AddColumn) (string, error) {
	return buildAddColumnSQL(op, d.QuoteIdent, d.ColumnDefSQL)
}

func (d *sqliteDialect) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *sqliteDialect) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent)
}

func (d *sqliteDialect) DropIndexSQL(op *ast.DropIndex) (string, error) {
	return buildDropIndexSQL(op, d.QuoteIdent)
}

func (d *sqliteDialect) AddForeignKeySQL(op *ast.AddForeignKey) (string, error) {
	return buildAddForeignKeySQL(op, d.QuoteIdent, nil)
}

func (d *sqliteDialect) DropForeignKeySQL(op *ast.DropForeignKey) (string, error) {
	return buildDropForeignKeySQL(op, d.QuoteIdent, "DROP CONSTRAINT")
}
