package introspect

import (
	"context"
	"database/sql"
)

// mssqlLoader reads the sys.* catalog views.
type mssqlLoader struct{}

const msTablesSQL = `SELECT name FROM sys.tables`

const msColumnsSQL = `SELECT t.name, c.name, ty.name
FROM sys.columns c
JOIN sys.tables t ON c.object_id = t.object_id
JOIN sys.types ty ON c.user_type_id = ty.user_type_id`

const msIndexesSQL = `SELECT t.name, i.name
FROM sys.indexes i
JOIN sys.tables t ON i.object_id = t.object_id
WHERE i.name IS NOT NULL AND i.is_primary_key = 0`

const msForeignKeysSQL = `SELECT t.name, fk.name
FROM sys.foreign_keys fk
JOIN sys.tables t ON fk.parent_object_id = t.object_id`

func (mssqlLoader) load(ctx context.Context, db *sql.DB) (*Snapshot, error) {
	snap := Empty()

	rows, err := db.QueryContext(ctx, msTablesSQL)
	if err != nil {
		return nil, err
	}
	if err := scanSingleColumn(rows, func(table string) {
		snap.table(table)
	}); err != nil {
		return nil, err
	}

	cols, err := db.QueryContext(ctx, msColumnsSQL)
	if err != nil {
		return nil, err
	}
	if err := scanColumnRows(cols, snap); err != nil {
		return nil, err
	}

	idx, err := db.QueryContext(ctx, msIndexesSQL)
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

	fks, err := db.QueryContext(ctx, msForeignKeysSQL)
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
