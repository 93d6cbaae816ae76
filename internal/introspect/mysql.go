package introspect

import (
	"context"
	"database/sql"
)

// mysqlLoader reads the INFORMATION_SCHEMA catalog scoped to the current
// database.
type mysqlLoader struct{}

const myTablesSQL = `SELECT table_name FROM information_schema.tables
WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'`

const myColumnsSQL = `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = DATABASE()`

const myIndexesSQL = `SELECT DISTINCT table_name, index_name
FROM information_schema.statistics
WHERE table_schema = DATABASE() AND index_name <> 'PRIMARY'`

const myForeignKeysSQL = `SELECT table_name, constraint_name
FROM information_schema.table_constraints
WHERE table_schema = DATABASE() AND constraint_type = 'FOREIGN KEY'`

func (mysqlLoader) load(ctx context.Context, db *sql.DB) (*Snapshot, error) {
	snap := Empty()

	rows, err := db.QueryContext(ctx, myTablesSQL)
	if err != nil {
		return nil, err
	}
	if err := scanSingleColumn(rows, func(table string) {
		snap.table(table)
	}); err != nil {
		return nil, err
	}

	cols, err := db.QueryContext(ctx, myColumnsSQL)
	if err != nil {
		return nil, err
	}
	if err := scanColumnRows(cols, snap); err != nil {
		return nil, err
	}

	idx, err := db.QueryContext(ctx, myIndexesSQL)
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

	fks, err := db.QueryContext(ctx, myForeignKeysSQL)
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
