package ast

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/anvildb/anvil/internal/anerr"
)

// Validation messages shared across TableDef, ColumnDef, IndexDef,
// ForeignKeyDef, and their corresponding Operation types (operation.go).
const (
	msgTableNameRequired  = "table name is required"
	msgColumnNameRequired = "column name is required"
	msgTableNeedsColumn   = "table must have at least one column"
	msgIndexNeedsColumn   = "index must have at least one column"
	msgFKNeedsColumn      = "foreign key must have a source column"
	msgFKNeedsRefTable    = "foreign key must reference a table"
)

// validIdentifierPattern matches safe SQL identifiers.
var validIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier checks that a name is a safe SQL identifier.
func ValidateIdentifier(name string) error {
	if !validIdentifierPattern.MatchString(name) {
		return anerr.Newf(anerr.ErrInvalidIdentifier,
			"invalid identifier %q; must match [A-Za-z_][A-Za-z0-9_]*", name)
	}
	return nil
}

// Foreign key delete behaviors. Dialects translate these to their own
// keywords; SQL Server has no RESTRICT and maps it to NO ACTION.
const (
	Cascade  = "CASCADE"
	SetNull  = "SET NULL"
	Restrict = "RESTRICT"
	NoAction = "NO ACTION"
)

// validFKActions is the set of valid ON DELETE behaviors.
var validFKActions = map[string]bool{
	"":       true, // empty = engine default
	Cascade:  true,
	SetNull:  true,
	Restrict: true,
	NoAction: true,
}

// NormalizeFKAction normalizes and validates a delete behavior string.
// Accepts lowercase and underscore forms ("set_null" -> "SET NULL").
func NormalizeFKAction(action string) (string, error) {
	if action == "" {
		return "", nil
	}
	upper := strings.ToUpper(strings.TrimSpace(action))
	upper = strings.ReplaceAll(upper, "_", " ")
	if !validFKActions[upper] {
		return "", anerr.Newf(anerr.ErrInvalidAction,
			"invalid foreign key delete behavior %q; must be one of: CASCADE, SET NULL, RESTRICT, NO ACTION", action)
	}
	return upper, nil
}

// -----------------------------------------------------------------------------
// ColumnDef
// -----------------------------------------------------------------------------

// ColumnDef represents a column definition with its abstract type and modifiers.
type ColumnDef struct {
	Name          string  `yaml:"name"`
	Type          ColType `yaml:"type"`
	MaxLength     int     `yaml:"max_length,omitempty"`
	Nullable      bool    `yaml:"nullable,omitempty"`
	PrimaryKey    bool    `yaml:"primary_key,omitempty"`
	AutoIncrement bool    `yaml:"auto_increment,omitempty"`
}

// Validate checks that the column definition is well-formed.
func (c *ColumnDef) Validate() error {
	if c.Name == "" {
		return anerr.New(anerr.ErrSchemaInvalid, msgColumnNameRequired)
	}
	if err := ValidateIdentifier(c.Name); err != nil {
		return err
	}
	if !ValidColType(c.Type) {
		return anerr.Newf(anerr.ErrInvalidType, "unsupported column type %q", c.Type).
			WithColumn(c.Name)
	}
	if c.AutoIncrement && !c.PrimaryKey {
		return anerr.New(anerr.ErrSchemaInvalid, "auto-increment column must be the primary key").
			WithColumn(c.Name)
	}
	if c.AutoIncrement && c.Type != TypeInteger {
		return anerr.New(anerr.ErrSchemaInvalid, "auto-increment column must be an integer").
			WithColumn(c.Name)
	}
	return nil
}

// -----------------------------------------------------------------------------
// ForeignKeyDef
// -----------------------------------------------------------------------------

// ForeignKeyDef represents a foreign key constraint. A table may legally
// reference itself (RefTable equal to the owning table).
type ForeignKeyDef struct {
	Name      string `yaml:"name,omitempty"` // Constraint name (generated if empty)
	Column    string `yaml:"column"`         // Source column
	RefTable  string `yaml:"ref_table"`      // Referenced table
	RefColumn string `yaml:"ref_column,omitempty"`
	OnDelete  string `yaml:"on_delete,omitempty"` // CASCADE, SET NULL, RESTRICT, NO ACTION
}

// TargetColumn returns the referenced column; fallback is the conventional
// primary key column when none was declared.
func (fk *ForeignKeyDef) TargetColumn(fallback string) string {
	if fk.RefColumn != "" {
		return fk.RefColumn
	}
	return fallback
}

// Validate checks that the foreign key definition is well-formed.
func (fk *ForeignKeyDef) Validate() error {
	if fk.Column == "" {
		return anerr.New(anerr.ErrSchemaInvalid, msgFKNeedsColumn)
	}
	if err := ValidateIdentifier(fk.Column); err != nil {
		return err
	}
	if fk.RefTable == "" {
		return anerr.New(anerr.ErrSchemaInvalid, msgFKNeedsRefTable)
	}
	if err := ValidateIdentifier(fk.RefTable); err != nil {
		return err
	}
	if fk.RefColumn != "" {
		if err := ValidateIdentifier(fk.RefColumn); err != nil {
			return err
		}
	}
	if _, err := NormalizeFKAction(fk.OnDelete); err != nil {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------
// IndexDef
// -----------------------------------------------------------------------------

// IndexDef represents an index over an ordered column list.
type IndexDef struct {
	Name    string   `yaml:"name,omitempty"` // Generated if empty
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique,omitempty"`
}

// Validate checks that the index definition is well-formed.
func (i *IndexDef) Validate() error {
	if len(i.Columns) == 0 {
		return anerr.New(anerr.ErrSchemaInvalid, msgIndexNeedsColumn)
	}
	for _, col := range i.Columns {
		if err := ValidateIdentifier(col); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// TableDef
// -----------------------------------------------------------------------------

// TableDef represents a complete table definition with columns, indexes, and
// foreign keys. This is the result of analyzing an entity descriptor.
type TableDef struct {
	Name        string           `yaml:"name"`
	Columns     []*ColumnDef     `yaml:"columns"`
	ForeignKeys []*ForeignKeyDef `yaml:"foreign_keys,omitempty"`
	Indexes     []*IndexDef      `yaml:"indexes,omitempty"`
}

// GetColumn returns the column with the given name, or nil if not found.
func (t *TableDef) GetColumn(name string) *ColumnDef {
	for _, col := range t.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

// HasColumn returns true if the table has a column with the given name.
func (t *TableDef) HasColumn(name string) bool {
	return t.GetColumn(name) != nil
}

// PrimaryKey returns the first primary key column, or nil if none.
func (t *TableDef) PrimaryKey() *ColumnDef {
	for _, col := range t.Columns {
		if col.PrimaryKey {
			return col
		}
	}
	return nil
}

// PrimaryKeyColumns returns the names of all primary key columns in order.
func (t *TableDef) PrimaryKeyColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if col.PrimaryKey {
			names = append(names, col.Name)
		}
	}
	return names
}

// ReferencedTables returns the distinct tables referenced by foreign keys,
// excluding self-references.
func (t *TableDef) ReferencedTables() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == t.Name || seen[fk.RefTable] {
			continue
		}
		seen[fk.RefTable] = true
		refs = append(refs, fk.RefTable)
	}
	return refs
}

// Validate checks that the table definition is well-formed, including the
// single-auto-increment invariant.
func (t *TableDef) Validate() error {
	if t.Name == "" {
		return anerr.New(anerr.ErrSchemaInvalid, msgTableNameRequired)
	}
	if err := ValidateIdentifier(t.Name); err != nil {
		return err
	}
	if len(t.Columns) == 0 {
		return anerr.New(anerr.ErrSchemaInvalid, msgTableNeedsColumn).
			WithTable(t.Name)
	}

	seen := make(map[string]bool)
	autoIncrements := 0
	for _, col := range t.Columns {
		if err := col.Validate(); err != nil {
			return anerr.Wrap(anerr.ErrSchemaInvalid, err, "invalid column").
				WithTable(t.Name).
				WithColumn(col.Name)
		}
		if seen[col.Name] {
			return anerr.New(anerr.ErrSchemaDuplicate, "duplicate column name").
				WithTable(t.Name).
				WithColumn(col.Name)
		}
		seen[col.Name] = true
		if col.AutoIncrement {
			autoIncrements++
		}
	}
	if autoIncrements > 1 {
		return anerr.New(anerr.ErrSchemaInvalid, "table may have at most one auto-increment column").
			WithTable(t.Name)
	}

	for _, idx := range t.Indexes {
		if err := idx.Validate(); err != nil {
			return anerr.Wrap(anerr.ErrSchemaInvalid, err, "invalid index").
				WithTable(t.Name)
		}
	}
	for _, fk := range t.ForeignKeys {
		if err := fk.Validate(); err != nil {
			return anerr.Wrap(anerr.ErrSchemaInvalid, err, "invalid foreign key").
				WithTable(t.Name)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// SchemaModel
// -----------------------------------------------------------------------------

// SchemaModel is the declared target database structure: an ordered set of
// table definitions keyed by name. It is built once per generation run and
// must not be mutated after construction.
type SchemaModel struct {
	tables []*TableDef
	byName map[string]*TableDef
}

// BuildSchemaModel constructs a SchemaModel from table definitions in
// declaration order. Duplicate table names are rejected.
func BuildSchemaModel(tables []*TableDef) (*SchemaModel, error) {
	m := &SchemaModel{
		tables: make([]*TableDef, 0, len(tables)),
		byName: make(map[string]*TableDef, len(tables)),
	}
	for _, t := range tables {
		if _, exists := m.byName[t.Name]; exists {
			return nil, anerr.New(anerr.ErrSchemaDuplicate,
				fmt.Sprintf("table %q declared more than once", t.Name))
		}
		m.tables = append(m.tables, t)
		m.byName[t.Name] = t
	}
	return m, nil
}

// Tables returns the table definitions in declaration order.
func (m *SchemaModel) Tables() []*TableDef {
	return m.tables
}

// Get returns the table with the given name, or nil if not declared.
func (m *SchemaModel) Get(name string) *TableDef {
	return m.byName[name]
}

// Has reports whether a table with the given name is declared.
func (m *SchemaModel) Has(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// Len returns the number of declared tables.
func (m *SchemaModel) Len() int {
	return len(m.tables)
}
