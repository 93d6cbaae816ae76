package dialect

import (
	"fmt"
	"strings"

	"github.com/anvildb/anvil/internal/ast"
)

// postgresDialect implements Dialect for PostgreSQL.
type postgresDialect struct{}

// Postgres returns the PostgreSQL dialect.
func Postgres() Dialect {
	return &postgresDialect{}
}

func (d *postgresDialect) Name() string {
	return "postgres"
}

// QuoteIdent quotes with double quotes, escaping embedded quotes.
func (d *postgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *postgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *postgresDialect) ColumnType(col *ast.ColumnDef) string {
	switch col.Type {
	case ast.TypeInteger:
		return "INTEGER"
	case ast.TypeString:
		length := col.MaxLength
		if length <= 0 {
			length = defaultStringLength
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case ast.TypeFloat:
		return "DOUBLE PRECISION"
	case ast.TypeBoolean:
		return "BOOLEAN"
	case ast.TypeDateTime:
		return "TIMESTAMP"
	default:
		return strings.ToUpper(string(col.Type))
	}
}

func (d *postgresDialect) ColumnDefSQL(col *ast.ColumnDef) string {
	typeSQL := d.ColumnType(col)
	if col.AutoIncrement {
		typeSQL = "SERIAL"
	}
	return buildColumnDefSQL(col, d.QuoteIdent, typeSQL, true)
}

func (d *postgresDialect) CreateTableSQL(op *ast.CreateTable) (string, error) {
	return buildCreateTableSQL(op, d.QuoteIdent, d.ColumnDefSQL)
}

func (d *postgresDialect) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

func (d *postgresDialect) AddColumnSQL(op *ast.AddColumn) (string, error) {
	return buildAddColumnSQL(op, d.QuoteIdent, d.ColumnDefSQL)
}

func (d *postgresDialect) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *postgresDialect) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent)
}

func (d *postgresDialect) DropIndexSQL(op *ast.DropIndex) (string, error) {
	return buildDropIndexSQL(op, d.QuoteIdent)
}

func (d *postgresDialect) AddForeignKeySQL(op *ast.AddForeignKey) (string, error) {
	return buildAddForeignKeySQL(op, d.QuoteIdent, nil)
}

func (d *postgresDialect) DropForeignKeySQL(op *ast.DropForeignKey) (string, error) {
	return buildDropForeignKeySQL(op, d.QuoteIdent, "DROP CONSTRAINT")
}
