package engine

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/anvildb/anvil/internal/anerr"
	"github.com/anvildb/anvil/internal/ast"
	"github.com/anvildb/anvil/internal/dialect"
)

// Runner executes operation lists against a live connection: strictly one
// DDL statement per operation, in list order. The first failure aborts the
// remaining operations and propagates; statements already executed are not
// reverted.
type Runner struct {
	db *sql.DB
	d  dialect.Dialect
}

// NewRunner returns a runner bound to a connection and dialect.
func NewRunner(db *sql.DB, d dialect.Dialect) *Runner {
	return &Runner{db: db, d: d}
}

// Run executes the operations in order.
func (r *Runner) Run(ctx context.Context, ops []ast.Operation) error {
	applier, hasApplier := r.d.(dialect.ForeignKeyApplier)

	for i, op := range ops {
		if fk, ok := op.(*ast.AddForeignKey); ok && hasApplier {
			slog.Debug("applying foreign key", "index", i, "constraint", fk.Name, "table", fk.TableName)
			if err := applier.ApplyForeignKey(ctx, r.db, fk); err != nil {
				return anerr.Wrapf(anerr.ErrMigrationFailed, err, "operation %d of %d failed", i+1, len(ops))
			}
			continue
		}

		stmt, err := dialect.RenderOperation(r.d, op)
		if err != nil {
			return err
		}
		slog.Debug("executing statement", "index", i, "op", op.Type().String(), "table", op.Table())
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return anerr.Wrapf(anerr.ErrSQLExecution, err, "operation %d of %d failed", i+1, len(ops)).
				WithTable(op.Table()).
				WithSQL(stmt)
		}
	}
	return nil
}

// RenderAll renders the operations to SQL without executing them. Used for
// dry-run previews.
func (r *Runner) RenderAll(ops []ast.Operation) ([]string, error) {
	stmts := make([]string, 0, len(ops))
	for _, op := range ops {
		stmt, err := dialect.RenderOperation(r.d, op)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}
