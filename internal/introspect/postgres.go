package introspect

import (
	"context"
	"database/sql"
)

// postgresLoader reads the INFORMATION_SCHEMA catalog plus pg_indexes.
type postgresLoader struct{}

const pgTablesSQL = `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'`

const pgColumnsSQL = `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'public'`

const pgIndexesSQL = `SELECT tablename, indexname FROM pg_indexes
WHERE schemaname = 'public'`

const pgForeignKeysSQL = `SELECT table_name, constraint_name
FROM information_schema.table_constraints
WHERE table_schema = 'public' AND constraint_type = 'FOREIGN KEY'`

func (postgresLoader) load(ctx context.Context, db *sql.DB) (*Snapshot, error) {
	snap := Empty()

	rows, err := db.QueryContext(ctx, pgTablesSQL)
	if err != nil {
		return nil, err
	}
	if err := scanSingleColumn(rows, func(table string) {
		snap.table(table)
	}); err != nil {
		return nil, err
	}

	cols, err := db.QueryContext(ctx, pgColumnsSQL)
	if err != nil {
		return nil, err
	}
	if err := scanColumnRows(cols, snap); err != nil {
		return nil, err
	}

	idx, err := db.QueryContext(ctx, pgIndexesSQL)
	if err != nil {
		return nil, err
	}
	if err := collectRows(idx, func(table, index string) {
		if snap.HasTable(table) {
			snap.table(table).Indexes[index] = true
		}
	}); err != nil {
		return nil, err
	}

	fks, err := db.QueryContext(ctx, pgForeignKeysSQL)
	if err != nil {
		return nil, err
	}
	if err := collectRows(fks, func(table, constraint string) {
		if snap.HasTable(table) {
			snap.table(table).ForeignKeys[constraint] = true
		}
	}); err != nil {
		return nil, err
	}

	return snap, nil
}

// scanSingleColumn scans a one-column result set.
func scanSingleColumn(rows *sql.Rows, assign func(value string)) error {
	defer rows.Close()
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return err
		}
		assign(value)
	}
	return rows.Err()
}

// scanColumnRows scans (table, column, type) rows into the snapshot,
// ignoring tables that were not listed as base tables.
func scanColumnRows(rows *sql.Rows, snap *Snapshot) error {
	defer rows.Close()
	for rows.Next() {
		var table, column, colType string
		if err := rows.Scan(&table, &column, &colType); err != nil {
			return err
		}
		if snap.HasTable(table) {
			snap.table(table).Columns[column] = colType
		}
	}
	return rows.Err()
}
