package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/anvildb/anvil/internal/anerr"
	"github.com/anvildb/anvil/internal/ast"
	"github.com/anvildb/anvil/internal/dialect"
	"github.com/anvildb/anvil/internal/introspect"
)

// LedgerTable is the name of the applied-migrations table.
const LedgerTable = "anvil_migrations"

// Ledger persists which migrations have been applied. The table is created
// lazily on first access; its absence is never an error.
type Ledger struct {
	db *sql.DB
	d  dialect.Dialect
}

// NewLedger returns a ledger bound to a connection and dialect.
func NewLedger(db *sql.DB, d dialect.Dialect) *Ledger {
	return &Ledger{db: db, d: d}
}

// ledgerTableDef is the ledger's schema, rendered per dialect through the
// same emitter the migrations use.
func ledgerTableDef() *ast.CreateTable {
	return &ast.CreateTable{
		Name: LedgerTable,
		Columns: []*ast.ColumnDef{
			{Name: "id", Type: ast.TypeInteger, PrimaryKey: true, AutoIncrement: true},
			{Name: "timestamp", Type: ast.TypeString, MaxLength: 14},
			{Name: "name", Type: ast.TypeString, MaxLength: 255},
			{Name: "applied_at", Type: ast.TypeDateTime},
		},
	}
}

// ensure creates the ledger table if it does not exist yet.
func (l *Ledger) ensure(ctx context.Context) error {
	exists, err := introspect.TableExists(ctx, l.db, l.d.Name(), LedgerTable)
	if err != nil {
		return anerr.Wrap(anerr.ErrIntrospection, err, "cannot check ledger table")
	}
	if exists {
		return nil
	}

	stmt, err := l.d.CreateTableSQL(ledgerTableDef())
	if err != nil {
		return err
	}
	if _, err := l.db.ExecContext(ctx, stmt); err != nil {
		return anerr.Wrap(anerr.ErrSQLExecution, err, "cannot create ledger table").
			WithTable(LedgerTable).
			WithSQL(stmt)
	}
	return nil
}

// Applied returns all ledger rows, ascending by timestamp then name.
func (l *Ledger) Applied(ctx context.Context) ([]*Record, error) {
	if err := l.ensure(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, timestamp, name, applied_at FROM %s ORDER BY timestamp, name",
		l.d.QuoteIdent(LedgerTable))
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, anerr.WrapSQL(err, "list applied migrations", LedgerTable)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var r Record
		var appliedAt any
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Name, &appliedAt); err != nil {
			return nil, anerr.WrapSQL(err, "scan ledger row", LedgerTable)
		}
		r.AppliedAt = parseAppliedAt(appliedAt)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, anerr.WrapSQL(err, "read ledger rows", LedgerTable)
	}
	return records, nil
}

// parseAppliedAt tolerates the drivers' differing datetime scan types.
func parseAppliedAt(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case []byte:
		return parseTimeString(string(t))
	case string:
		return parseTimeString(t)
	default:
		return time.Time{}
	}
}

func parseTimeString(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// RecordApplied inserts a ledger row for a successfully applied migration.
func (l *Ledger) RecordApplied(ctx context.Context, m *Migration) error {
	if err := l.ensure(ctx); err != nil {
		return err
	}

	stmt := fmt.Sprintf("INSERT INTO %s (timestamp, name, applied_at) VALUES (%s, %s, %s)",
		l.d.QuoteIdent(LedgerTable),
		l.d.Placeholder(1), l.d.Placeholder(2), l.d.Placeholder(3))
	appliedAt := time.Now().UTC().Format("2006-01-02 15:04:05")
	if _, err := l.db.ExecContext(ctx, stmt, m.Timestamp, m.Name, appliedAt); err != nil {
		return anerr.WrapSQL(err, "record applied migration", LedgerTable).
			With("migration", m.Key())
	}
	return nil
}

// DeleteRecord removes the ledger row for a rolled-back migration.
func (l *Ledger) DeleteRecord(ctx context.Context, m *Migration) error {
	if err := l.ensure(ctx); err != nil {
		return err
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE timestamp = %s AND name = %s",
		l.d.QuoteIdent(LedgerTable),
		l.d.Placeholder(1), l.d.Placeholder(2))
	if _, err := l.db.ExecContext(ctx, stmt, m.Timestamp, m.Name); err != nil {
		return anerr.WrapSQL(err, "delete ledger row", LedgerTable).
			With("migration", m.Key())
	}
	return nil
}
