// Package dialect provides database-specific SQL generation.
// Each dialect implements type mapping from abstract column types to SQL,
// identifier quoting, and DDL statement generation for schema operations.
package dialect

import (
	"context"
	"database/sql"

	"github.com/anvildb/anvil/internal/anerr"
	"github.com/anvildb/anvil/internal/ast"
)

// Dialect defines the interface for database-specific SQL generation.
// Implementations exist for PostgreSQL, MySQL, SQLite, and SQL Server.
type Dialect interface {
	// Name returns the dialect name (postgres, mysql, sqlite, sqlserver).
	Name() string

	// QuoteIdent quotes an identifier (table/column name) for the dialect.
	// PostgreSQL/SQLite: "name", MySQL: `name`, SQL Server: [name]
	QuoteIdent(name string) string

	// Placeholder returns a parameter placeholder for the given index (1-based).
	// PostgreSQL: $1, MySQL/SQLite: ?, SQL Server: @p1
	Placeholder(index int) string

	// ColumnType renders the SQL type for an abstract column type,
	// excluding auto-increment forms (those are part of ColumnDefSQL).
	ColumnType(col *ast.ColumnDef) string

	// ColumnDefSQL renders a full column definition clause: name, type,
	// auto-increment form, nullability, primary key.
	ColumnDefSQL(col *ast.ColumnDef) string

	// -------------------------------------------------------------------------
	// SQL generation for operations. One statement per operation.
	// -------------------------------------------------------------------------

	CreateTableSQL(op *ast.CreateTable) (string, error)
	DropTableSQL(op *ast.DropTable) (string, error)
	AddColumnSQL(op *ast.AddColumn) (string, error)
	DropColumnSQL(op *ast.DropColumn) (string, error)
	CreateIndexSQL(op *ast.CreateIndex) (string, error)
	DropIndexSQL(op *ast.DropIndex) (string, error)
	AddForeignKeySQL(op *ast.AddForeignKey) (string, error)
	DropForeignKeySQL(op *ast.DropForeignKey) (string, error)
}

// ForeignKeyApplier is an optional interface for dialects that cannot apply
// foreign keys as a single fire-and-forget statement. SQL Server implements
// it: the constraint catalog is checked for a same-named constraint before
// executing (skip, not error, when found), and the catalog is re-queried
// after execution to confirm visibility. The runner detects this interface
// and routes AddForeignKey operations through it.
type ForeignKeyApplier interface {
	ApplyForeignKey(ctx context.Context, db *sql.DB, op *ast.AddForeignKey) error
}

// RenderOperation dispatches an operation to the matching Dialect method.
func RenderOperation(d Dialect, op ast.Operation) (string, error) {
	switch o := op.(type) {
	case *ast.CreateTable:
		return d.CreateTableSQL(o)
	case *ast.DropTable:
		return d.DropTableSQL(o)
	case *ast.AddColumn:
		return d.AddColumnSQL(o)
	case *ast.DropColumn:
		return d.DropColumnSQL(o)
	case *ast.CreateIndex:
		return d.CreateIndexSQL(o)
	case *ast.DropIndex:
		return d.DropIndexSQL(o)
	case *ast.AddForeignKey:
		return d.AddForeignKeySQL(o)
	case *ast.DropForeignKey:
		return d.DropForeignKeySQL(o)
	default:
		return "", anerr.Newf(anerr.ErrUnsupportedDialect, "no SQL rendering for operation %s", op.Type())
	}
}

// Get returns the dialect implementation for the given name.
// Valid names: "postgres", "postgresql", "mysql", "sqlite", "sqlite3",
// "sqlserver", "mssql". Returns an error for unsupported names.
func Get(name string) (Dialect, error) {
	switch name {
	case "postgres", "postgresql":
		return Postgres(), nil
	case "mysql":
		return MySQL(), nil
	case "sqlite", "sqlite3":
		return SQLite(), nil
	case "sqlserver", "mssql":
		return SQLServer(), nil
	default:
		return nil, anerr.Newf(anerr.ErrUnsupportedDialect, "unsupported dialect %q", name)
	}
}

// Names returns the list of supported dialect names.
func Names() []string {
	return []string{"postgres", "mysql", "sqlite", "sqlserver"}
}
