package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anvildb/anvil/internal/anerr"
	"github.com/anvildb/anvil/internal/ast"
)

// mssqlDialect implements Dialect for SQL Server. It departs from the
// shared builders in several places: CREATE TABLE text is assembled by
// hand, identity columns force NOT NULL, RESTRICT maps to NO ACTION, and
// foreign keys are applied through a catalog-guarded code path.
type mssqlDialect struct {
	// Constraint visibility after DDL can lag briefly; the confirmation
	// read retries up to confirmRetries times with confirmDelay between.
	confirmRetries int
	confirmDelay   time.Duration
}

// SQLServer returns the SQL Server dialect.
func SQLServer() Dialect {
	return &mssqlDialect{
		confirmRetries: 5,
		confirmDelay:   200 * time.Millisecond,
	}
}

func (d *mssqlDialect) Name() string {
	return "sqlserver"
}

// QuoteIdent quotes with brackets, escaping embedded closing brackets.
func (d *mssqlDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d *mssqlDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index)
}

func (d *mssqlDialect) ColumnType(col *ast.ColumnDef) string {
	switch col.Type {
	case ast.TypeInteger:
		return "INT"
	case ast.TypeString:
		length := col.MaxLength
		if length <= 0 {
			length = defaultStringLength
		}
		return fmt.Sprintf("NVARCHAR(%d)", length)
	case ast.TypeFloat:
		return "FLOAT"
	case ast.TypeBoolean:
		return "BIT"
	case ast.TypeDateTime:
		return "DATETIME2"
	default:
		return strings.ToUpper(string(col.Type))
	}
}

// ColumnDefSQL renders one column clause. Identity columns always carry an
// explicit NOT NULL; SQL Server rejects nullable identity columns.
func (d *mssqlDialect) ColumnDefSQL(col *ast.ColumnDef) string {
	var b strings.Builder
	b.WriteString(d.QuoteIdent(col.Name))
	b.WriteString(" ")
	b.WriteString(d.ColumnType(col))
	if col.AutoIncrement {
		b.WriteString(" IDENTITY(1,1) NOT NULL")
	} else if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	return b.String()
}

// CreateTableSQL assembles the statement by hand rather than through the
// shared builder; the identity and NOT NULL interplay does not fit the
// generic column pipeline.
func (d *mssqlDialect) CreateTableSQL(op *ast.CreateTable) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(d.QuoteIdent(op.Name))
	b.WriteString(" (\n")
	for i, col := range op.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.WriteString(d.ColumnDefSQL(col))
	}
	b.WriteString("\n)")
	return b.String(), nil
}

func (d *mssqlDialect) DropTableSQL(op *ast.DropTable) (string, error) {
	return buildDropTableSQL(op, d.QuoteIdent)
}

// AddColumnSQL uses SQL Server's ADD without the COLUMN keyword.
func (d *mssqlDialect) AddColumnSQL(op *ast.AddColumn) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("ALTER TABLE ")
	b.WriteString(d.QuoteIdent(op.TableName))
	b.WriteString(" ADD ")
	b.WriteString(d.ColumnDefSQL(op.Column))
	return b.String(), nil
}

func (d *mssqlDialect) DropColumnSQL(op *ast.DropColumn) (string, error) {
	return buildDropColumnSQL(op, d.QuoteIdent)
}

func (d *mssqlDialect) CreateIndexSQL(op *ast.CreateIndex) (string, error) {
	return buildCreateIndexSQL(op, d.QuoteIdent)
}

func (d *mssqlDialect) DropIndexSQL(op *ast.DropIndex) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	if op.TableName == "" {
		return "", errIndexNeedsTable(op.Name)
	}
	return "DROP INDEX " + d.QuoteIdent(op.Name) + " ON " + d.QuoteIdent(op.TableName), nil
}

// mapRestrictToNoAction translates the logical RESTRICT behavior; SQL
// Server has no RESTRICT keyword.
func mapRestrictToNoAction(action string) string {
	if action == ast.Restrict {
		return ast.NoAction
	}
	return action
}

func (d *mssqlDialect) AddForeignKeySQL(op *ast.AddForeignKey) (string, error) {
	return buildAddForeignKeySQL(op, d.QuoteIdent, mapRestrictToNoAction)
}

func (d *mssqlDialect) DropForeignKeySQL(op *ast.DropForeignKey) (string, error) {
	return buildDropForeignKeySQL(op, d.QuoteIdent, "DROP CONSTRAINT")
}

// constraintExistsSQL counts same-named foreign key constraints on a table.
const constraintExistsSQL = `SELECT COUNT(*) FROM sys.foreign_keys fk
JOIN sys.tables t ON fk.parent_object_id = t.object_id
WHERE fk.name = @p1 AND t.name = @p2`

// ApplyForeignKey implements ForeignKeyApplier. The catalog is checked for
// an existing same-named constraint first so re-applying a migration across
// runs skips rather than errors. After executing the DDL the catalog is
// re-queried until the constraint becomes visible; constraint metadata can
// lag the DDL round trip.
func (d *mssqlDialect) ApplyForeignKey(ctx context.Context, db *sql.DB, op *ast.AddForeignKey) error {
	exists, err := d.constraintExists(ctx, db, op.Name, op.TableName)
	if err != nil {
		return err
	}
	if exists {
		slog.Info("foreign key already exists, skipping", "constraint", op.Name, "table", op.TableName)
		return nil
	}

	stmt, err := d.AddForeignKeySQL(op)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return anerr.Wrap(anerr.ErrSQLExecution, err, "failed to add foreign key").
			WithTable(op.TableName).
			WithSQL(stmt)
	}

	// Force pending work out before confirming against the catalog.
	if _, err := db.ExecContext(ctx, "CHECKPOINT"); err != nil {
		slog.Warn("checkpoint after foreign key creation failed", "error", err)
	}

	for attempt := 0; attempt < d.confirmRetries; attempt++ {
		exists, err = d.constraintExists(ctx, db, op.Name, op.TableName)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.confirmDelay):
		}
	}

	return anerr.New(anerr.ErrConstraintUnsettled, "foreign key not visible in catalog after creation").
		With("constraint", op.Name).
		WithTable(op.TableName)
}

func (d *mssqlDialect) constraintExists(ctx context.Context, db *sql.DB, constraint, table string) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, constraintExistsSQL, constraint, table).Scan(&count); err != nil {
		return false, anerr.Wrap(anerr.ErrIntrospection, err, "failed to query foreign key catalog").
			WithTable(table)
	}
	return count > 0, nil
}
