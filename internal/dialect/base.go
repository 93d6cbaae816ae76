// Shared SQL builders used by the dialect implementations. SQL Server
// hand-builds its CREATE TABLE text and does not use the generic
// column-clause helpers.
package dialect

import (
	"strings"

	"github.com/anvildb/anvil/internal/anerr"
	"github.com/anvildb/anvil/internal/ast"
)

// QuoteIdentFunc is a function that quotes an identifier.
type QuoteIdentFunc func(name string) string

// writeQuotedList writes comma-separated quoted identifiers to the builder.
func writeQuotedList(b *strings.Builder, items []string, quote QuoteIdentFunc) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(item))
	}
}

// ColumnDefFunc generates SQL for one column definition clause.
type ColumnDefFunc func(col *ast.ColumnDef) string

// buildCreateTableSQL generates CREATE TABLE SQL from per-dialect column
// clauses. The primary key is rendered inline by the column clause, so no
// table-level constraint list is emitted here.
func buildCreateTableSQL(op *ast.CreateTable, quoteIdent QuoteIdentFunc, columnDef ColumnDefFunc) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quoteIdent(op.Name))
	b.WriteString(" (\n")
	for i, col := range op.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.WriteString(columnDef(col))
	}
	b.WriteString("\n)")
	return b.String(), nil
}

// buildDropTableSQL generates DROP TABLE SQL.
func buildDropTableSQL(op *ast.DropTable, quoteIdent QuoteIdentFunc) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	return "DROP TABLE " + quoteIdent(op.Name), nil
}

// buildAddColumnSQL generates ALTER TABLE ADD COLUMN SQL.
func buildAddColumnSQL(op *ast.AddColumn, quoteIdent QuoteIdentFunc, columnDef ColumnDefFunc) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quoteIdent(op.TableName))
	b.WriteString(" ADD COLUMN ")
	b.WriteString(columnDef(op.Column))
	return b.String(), nil
}

// buildDropColumnSQL generates ALTER TABLE DROP COLUMN SQL.
func buildDropColumnSQL(op *ast.DropColumn, quoteIdent QuoteIdentFunc) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quoteIdent(op.TableName))
	b.WriteString(" DROP COLUMN ")
	b.WriteString(quoteIdent(op.Name))
	return b.String(), nil
}

// buildCreateIndexSQL generates CREATE [UNIQUE] INDEX SQL.
func buildCreateIndexSQL(op *ast.CreateIndex, quoteIdent QuoteIdentFunc) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("CREATE ")
	if op.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	b.WriteString(quoteIdent(op.Name))
	b.WriteString(" ON ")
	b.WriteString(quoteIdent(op.TableName))
	b.WriteString(" (")
	writeQuotedList(&b, op.Columns, quoteIdent)
	b.WriteString(")")
	return b.String(), nil
}

// buildDropIndexSQL generates DROP INDEX SQL for dialects where indexes
// live in a global namespace (PostgreSQL, SQLite).
func buildDropIndexSQL(op *ast.DropIndex, quoteIdent QuoteIdentFunc) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	return "DROP INDEX " + quoteIdent(op.Name), nil
}

// buildAddForeignKeySQL generates ALTER TABLE ADD CONSTRAINT FOREIGN KEY SQL.
// mapAction lets a dialect translate the delete behavior keyword; nil keeps
// the normalized form.
func buildAddForeignKeySQL(op *ast.AddForeignKey, quoteIdent QuoteIdentFunc, mapAction func(string) string) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quoteIdent(op.TableName))
	b.WriteString(" ADD CONSTRAINT ")
	b.WriteString(quoteIdent(op.Name))
	b.WriteString(" FOREIGN KEY (")
	b.WriteString(quoteIdent(op.Column))
	b.WriteString(") REFERENCES ")
	b.WriteString(quoteIdent(op.RefTable))
	b.WriteString(" (")
	b.WriteString(quoteIdent(op.RefColumn))
	b.WriteString(")")

	action, err := ast.NormalizeFKAction(op.OnDelete)
	if err != nil {
		return "", err
	}
	if action != "" {
		if mapAction != nil {
			action = mapAction(action)
		}
		b.WriteString(" ON DELETE ")
		b.WriteString(action)
	}
	return b.String(), nil
}

// buildDropForeignKeySQL generates ALTER TABLE DROP CONSTRAINT SQL.
// MySQL overrides the keyword (DROP FOREIGN KEY).
func buildDropForeignKeySQL(op *ast.DropForeignKey, quoteIdent QuoteIdentFunc, keyword string) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(quoteIdent(op.TableName))
	b.WriteString(" ")
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(quoteIdent(op.Name))
	return b.String(), nil
}

// buildColumnDefSQL renders name, type, nullability, and primary key for
// dialects without special auto-increment column forms in this position.
// typeSQL must already include the auto-increment rendering when needed.
func buildColumnDefSQL(col *ast.ColumnDef, quoteIdent QuoteIdentFunc, typeSQL string, inlinePK bool) string {
	var b strings.Builder
	b.WriteString(quoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(typeSQL)
	if !col.Nullable && !col.PrimaryKey {
		b.WriteString(" NOT NULL")
	}
	if col.PrimaryKey && inlinePK {
		b.WriteString(" PRIMARY KEY")
	}
	return b.String()
}

// defaultStringLength is used when a string column declares no max length.
const defaultStringLength = 255

// errIndexNeedsTable is returned by dialects whose DROP INDEX must be
// scoped to a table (MySQL, SQL Server).
func errIndexNeedsTable(index string) error {
	return anerr.New(anerr.ErrSchemaInvalid, "drop index requires a table name").
		With("index", index)
}
