// Package introspect loads a snapshot of the live database structure from
// the engine's catalog views. The snapshot is loaded once per generation
// run and compared against the declared schema model by the planner.
//
// Introspection failures never raise: the loader degrades to an empty
// snapshot, which causes planning to treat every table as new. That output
// is always syntactically valid, if possibly redundant, whereas silently
// skipping changes is not.
package introspect

import (
	"context"
	"database/sql"
	"log/slog"
)

// TableInfo describes one existing table: its column set with coarse type
// metadata, plus the names of its indexes and foreign key constraints.
type TableInfo struct {
	Columns     map[string]string // column name -> coarse catalog type
	Indexes     map[string]bool   // index names
	ForeignKeys map[string]bool   // FK constraint names
}

func newTableInfo() *TableInfo {
	return &TableInfo{
		Columns:     make(map[string]string),
		Indexes:     make(map[string]bool),
		ForeignKeys: make(map[string]bool),
	}
}

// Snapshot is the introspected live database structure. A nil table map
// entry means the table does not exist.
type Snapshot struct {
	tables map[string]*TableInfo
}

// Empty returns a snapshot with no tables.
func Empty() *Snapshot {
	return &Snapshot{tables: make(map[string]*TableInfo)}
}

// table returns the info for a table, creating it on first touch.
func (s *Snapshot) table(name string) *TableInfo {
	info, ok := s.tables[name]
	if !ok {
		info = newTableInfo()
		s.tables[name] = info
	}
	return info
}

// AddTable records a table in the snapshot. Loaders and tests build
// snapshots through these mutators; planning treats the snapshot as
// read-only.
func (s *Snapshot) AddTable(name string) {
	s.table(name)
}

// AddColumn records a column with its coarse catalog type.
func (s *Snapshot) AddColumn(table, column, colType string) {
	s.table(table).Columns[column] = colType
}

// AddIndex records an index name on a table.
func (s *Snapshot) AddIndex(table, index string) {
	s.table(table).Indexes[index] = true
}

// AddForeignKey records a foreign key constraint name on a table.
func (s *Snapshot) AddForeignKey(table, constraint string) {
	s.table(table).ForeignKeys[constraint] = true
}

// HasTable reports whether the table exists in the live database.
func (s *Snapshot) HasTable(name string) bool {
	_, ok := s.tables[name]
	return ok
}

// HasColumn reports whether the table exists and has the named column.
func (s *Snapshot) HasColumn(table, column string) bool {
	info, ok := s.tables[table]
	if !ok {
		return false
	}
	_, ok = info.Columns[column]
	return ok
}

// HasIndex reports whether the named index exists on the table.
func (s *Snapshot) HasIndex(table, index string) bool {
	info, ok := s.tables[table]
	return ok && info.Indexes[index]
}

// HasForeignKey reports whether the named constraint exists on the table.
func (s *Snapshot) HasForeignKey(table, constraint string) bool {
	info, ok := s.tables[table]
	return ok && info.ForeignKeys[constraint]
}

// ColumnType returns the coarse catalog type of a column, or "" if absent.
func (s *Snapshot) ColumnType(table, column string) string {
	info, ok := s.tables[table]
	if !ok {
		return ""
	}
	return info.Columns[column]
}

// Tables returns the names of all tables in the snapshot.
func (s *Snapshot) Tables() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	return names
}

// Len returns the number of tables in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.tables)
}

// loader reads catalog views for one dialect family.
type loader interface {
	load(ctx context.Context, db *sql.DB) (*Snapshot, error)
}

// loaderFor selects the catalog loader for a dialect name. The strategy
// set is closed; unsupported names return nil.
func loaderFor(dialect string) loader {
	switch dialect {
	case "postgres", "postgresql":
		return postgresLoader{}
	case "mysql":
		return mysqlLoader{}
	case "sqlite", "sqlite3":
		return sqliteLoader{}
	case "sqlserver", "mssql":
		return mssqlLoader{}
	default:
		return nil
	}
}

// New introspects the connected database and returns its snapshot. On any
// failure (no connection, unsupported dialect, catalog error) it logs a
// warning and returns an empty snapshot.
func New(ctx context.Context, db *sql.DB, dialect string) *Snapshot {
	if db == nil {
		slog.Warn("no database connection, using empty snapshot")
		return Empty()
	}

	l := loaderFor(dialect)
	if l == nil {
		slog.Warn("no introspection support for dialect, using empty snapshot", "dialect", dialect)
		return Empty()
	}

	snap, err := l.load(ctx, db)
	if err != nil {
		slog.Warn("introspection failed, using empty snapshot", "dialect", dialect, "error", err)
		return Empty()
	}
	return snap
}

// TableExists checks the live database for a table without loading a full
// snapshot.
func TableExists(ctx context.Context, db *sql.DB, dialect, table string) (bool, error) {
	l := loaderFor(dialect)
	if l == nil {
		return false, nil
	}
	snap, err := l.load(ctx, db)
	if err != nil {
		return false, err
	}
	return snap.HasTable(table), nil
}

// collectRows scans two-column (table, value) result sets into the
// snapshot via the assign callback. Shared by all loaders.
func collectRows(rows *sql.Rows, assign func(table, value string)) error {
	defer rows.Close()
	for rows.Next() {
		var table, value string
		if err := rows.Scan(&table, &value); err != nil {
			return err
		}
		assign(table, value)
	}
	return rows.Err()
}
