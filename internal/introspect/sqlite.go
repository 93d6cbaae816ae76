package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

// sqliteLoader reads sqlite_master and the PRAGMA table functions. SQLite
// does not expose foreign key constraint names through a catalog view, so
// they are recovered from the stored CREATE TABLE text.
type sqliteLoader struct{}

const slTablesSQL = `SELECT name, sql FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`

const slIndexesSQL = `SELECT tbl_name, name FROM sqlite_master
WHERE type = 'index' AND name NOT LIKE 'sqlite_%'`

// fkConstraintPattern matches named foreign key clauses in CREATE TABLE
// text, with either quoted or bare constraint names.
var fkConstraintPattern = regexp.MustCompile(`(?i)CONSTRAINT\s+"?([A-Za-z_][A-Za-z0-9_]*)"?\s+FOREIGN\s+KEY`)

func (sqliteLoader) load(ctx context.Context, db *sql.DB) (*Snapshot, error) {
	snap := Empty()

	rows, err := db.QueryContext(ctx, slTablesSQL)
	if err != nil {
		return nil, err
	}
	type tableDDL struct {
		name string
		sql  string
	}
	var ddls []tableDDL
	func() {
		defer rows.Close()
		for rows.Next() {
			var name string
			var createSQL sql.NullString
			if scanErr := rows.Scan(&name, &createSQL); scanErr != nil {
				err = scanErr
				return
			}
			ddls = append(ddls, tableDDL{name: name, sql: createSQL.String})
		}
		err = rows.Err()
	}()
	if err != nil {
		return nil, err
	}

	for _, t := range ddls {
		info := snap.table(t.name)

		cols, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, t.name))
		if err != nil {
			return nil, err
		}
		if err := scanPragmaColumns(cols, info); err != nil {
			return nil, err
		}

		for _, m := range fkConstraintPattern.FindAllStringSubmatch(t.sql, -1) {
			info.ForeignKeys[m[1]] = true
		}
	}

	idx, err := db.QueryContext(ctx, slIndexesSQL)
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

	return snap, nil
}

// scanPragmaColumns scans PRAGMA table_info rows: cid, name, type,
// notnull, dflt_value, pk.
func scanPragmaColumns(rows *sql.Rows, info *TableInfo) error {
	defer rows.Close()
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return err
		}
		info.Columns[name] = colType
	}
	return rows.Err()
}
