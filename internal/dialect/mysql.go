package dialect

import (
	"fmt"
	"strings"

	"github.com/anvildb/anvil/internal/ast"
)

// mysqlDialect implements Dialect for MySQL and MariaDB.
type mysqlDialect struct{}

// MySQL returns the MySQL dialect.
func MySQL() Dialect {
	return &mysqlDialect{}
}

func (d *mysqlDialect) Name() string {
	return "mysql"
}

// QuoteIdent quotes with backticks, escaping embedded backticks.
func (d *mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *mysqlDialect) Placeholder(index int) string {
	return "?"
}

func (d *mysqlDialect) ColumnType(col *ast.ColumnDef) string {
	switch col.Type {
	case ast.TypeInteger:
		return "INT"
	case ast.TypeString:
		length := col.MaxLength
		if length <= 0 {
			length = defaultStringLength
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case ast.TypeFloat:
		return "DOUBLE"
	case ast.TypeBoolean:
		return "BOOLEAN"
	case ast.TypeDateTime:
		return "DATETIME"
	default:
		return strings.ToUpper(string(col.Type))
	}
}

// ColumnDefSQL renders the column clause. MySQL's auto-increment is a
// trailing keyword after the NOT NULL constraint.
func (d *mysqlDialect) ColumnDefSQL(col *ast.ColumnDef) string {
	if col.AutoIncrement {
		return d.QuoteIdent(col.Name) + " " + d.ColumnType(col) + " NOT NULL AUTO_INCREMENT PRIMARY KEY"
	}
	return buildColumnDefSQL(col, d.QuoteIdent, d.ColumnType(col), true)
}

func (d *mysqlDialect) CreateTableSQL(op *ast.CreateTable) (string, error) {
	return buildCreateTableSQL(op, d.QuoteIdent, d.ColumnDefSQL)
}

func (d *mysqlDialect) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

func (d *mysqlDialect) AddColumnSQL(op *ast.AddColumn) (string, error) {
	return buildAddColumnSQL(op, d.QuoteIdent, d.ColumnDefSQL)
}

func (d *mysqlDialect) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *mysqlDialect) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent)
}

// DropIndexSQL scopes the index to its table; MySQL has no global index
// namespace.
func (d *mysqlDialect) DropIndexSQL(op *ast.DropIndex) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	if op.TableName == "" {
		return "", errIndexNeedsTable(op.Name)
	}
	return "DROP INDEX " + d.QuoteIdent(op.Name) + " ON " + d.QuoteIdent(op.TableName), nil
}

func (d *mysqlDialect) AddForeignKeySQL(op *ast.AddForeignKey) (string, error) {
	return buildAddForeignKeySQL(op, d.QuoteIdent, nil)
}

func (d *mysqlDialect) DropForeignKeySQL(op *ast.DropForeignKey) (string, error) {
	return buildDropForeignKeySQL(op, d.QuoteIdent, "DROP FOREIGN KEY")
}
