package ast

import (
	"github.com/anvildb/anvil/internal/anerr"
)

// Operation represents a single atomic change to the database schema.
// Planned changes and on-disk migration scripts are both expressed as
// ordered Operation lists; the order is fixed at planning time and must
// never be changed afterwards.
type Operation interface {
	// Type returns the operation type (OpCreateTable, OpAddColumn, etc.)
	Type() OpType

	// Table returns the name of the table the operation targets.
	Table() string

	// Validate checks that the operation is well-formed.
	// Returns an error if the operation has invalid or missing fields.
	Validate() error
}

// -----------------------------------------------------------------------------
// CreateTable - creates a new table
// -----------------------------------------------------------------------------

// CreateTable represents creating a new table with columns and inline
// primary key. Indexes and foreign keys are emitted as separate operations
// so every operation maps to exactly one SQL statement.
type CreateTable struct {
	Name    string       `yaml:"name"`
	Columns []*ColumnDef `yaml:"columns"`
}

func (op *CreateTable) Type() OpType  { return OpCreateTable }
func (op *CreateTable) Table() string { return op.Name }

func (op *CreateTable) Validate() error {
	if op.Name == "" {
		return anerr.New(anerr.ErrSchemaInvalid, msgTableNameRequired)
	}
	if len(op.Columns) == 0 {
		return anerr.New(anerr.ErrSchemaInvalid, msgTableNeedsColumn).
			WithTable(op.Name)
	}
	for _, col := range op.Columns {
		if err := col.Validate(); err != nil {
			return anerr.Wrap(anerr.ErrSchemaInvalid, err, "invalid column").
				WithTable(op.Name).
				WithColumn(col.Name)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropTable - removes an existing table
// -----------------------------------------------------------------------------

// DropTable represents dropping an existing table.
type DropTable struct {
	Name string `yaml:"name"`
}

func (op *DropTable) Type() OpType  { return OpDropTable }
func (op *DropTable) Table() string { return op.Name }

func (op *DropTable) Validate() error {
	if op.Name == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "table name is required for drop table")
	}
	return nil
}

// -----------------------------------------------------------------------------
// AddColumn - adds a column to an existing table
// -----------------------------------------------------------------------------

// AddColumn represents adding a new column to an existing table.
type AddColumn struct {
	TableName string     `yaml:"table"`
	Column    *ColumnDef `yaml:"column"`
}

func (op *AddColumn) Type() OpType  { return OpAddColumn }
func (op *AddColumn) Table() string { return op.TableName }

func (op *AddColumn) Validate() error {
	if op.TableName == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "table name is required for add column")
	}
	if op.Column == nil {
		return anerr.New(anerr.ErrSchemaInvalid, "column definition is required").
			WithTable(op.TableName)
	}
	if err := op.Column.Validate(); err != nil {
		return anerr.Wrap(anerr.ErrSchemaInvalid, err, "invalid column").
			WithTable(op.TableName).
			WithColumn(op.Column.Name)
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropColumn - removes a column from an existing table
// -----------------------------------------------------------------------------

// DropColumn represents removing a column from an existing table.
type DropColumn struct {
	TableName string `yaml:"table"`
	Name      string `yaml:"name"`
}

func (op *DropColumn) Type() OpType  { return OpDropColumn }
func (op *DropColumn) Table() string { return op.TableName }

func (op *DropColumn) Validate() error {
	if op.TableName == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "table name is required for drop column")
	}
	if op.Name == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "column name is required for drop column").
			WithTable(op.TableName)
	}
	return nil
}

// -----------------------------------------------------------------------------
// CreateIndex - creates a new index
// -----------------------------------------------------------------------------

// CreateIndex represents creating a new index on one or more columns.
type CreateIndex struct {
	TableName string   `yaml:"table"`
	Name      string   `yaml:"name"`
	Columns   []string `yaml:"columns"`
	Unique    bool     `yaml:"unique,omitempty"`
}

func (op *CreateIndex) Type() OpType  { return OpCreateIndex }
func (op *CreateIndex) Table() string { return op.TableName }

func (op *CreateIndex) Validate() error {
	if op.TableName == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "table name is required for create index")
	}
	if op.Name == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "index name is required for create index").
			WithTable(op.TableName)
	}
	if len(op.Columns) == 0 {
		return anerr.New(anerr.ErrSchemaInvalid, msgIndexNeedsColumn).
			WithTable(op.TableName)
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropIndex - removes an existing index
// -----------------------------------------------------------------------------

// DropIndex represents removing an existing index.
type DropIndex struct {
	TableName string `yaml:"table"`
	Name      string `yaml:"name"`
}

func (op *DropIndex) Type() OpType  { return OpDropIndex }
func (op *DropIndex) Table() string { return op.TableName }

func (op *DropIndex) Validate() error {
	if op.Name == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "index name is required for drop index")
	}
	return nil
}

// -----------------------------------------------------------------------------
// AddForeignKey - adds a foreign key constraint
// -----------------------------------------------------------------------------

// AddForeignKey represents adding a foreign key constraint.
type AddForeignKey struct {
	TableName string `yaml:"table"`
	Name      string `yaml:"name"`       // Constraint name
	Column    string `yaml:"column"`     // Local column
	RefTable  string `yaml:"ref_table"`  // Referenced table
	RefColumn string `yaml:"ref_column"` // Referenced column
	OnDelete  string `yaml:"on_delete,omitempty"`
}

func (op *AddForeignKey) Type() OpType  { return OpAddForeignKey }
func (op *AddForeignKey) Table() string { return op.TableName }

func (op *AddForeignKey) Validate() error {
	if op.TableName == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "table name is required for add foreign key")
	}
	if op.Name == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "constraint name is required for add foreign key").
			WithTable(op.TableName)
	}
	if op.Column == "" {
		return anerr.New(anerr.ErrSchemaInvalid, msgFKNeedsColumn).
			WithTable(op.TableName)
	}
	if op.RefTable == "" {
		return anerr.New(anerr.ErrSchemaInvalid, msgFKNeedsRefTable).
			WithTable(op.TableName)
	}
	if op.RefColumn == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "foreign key must reference a column").
			WithTable(op.TableName)
	}
	if _, err := NormalizeFKAction(op.OnDelete); err != nil {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------
// DropForeignKey - removes a foreign key constraint
// -----------------------------------------------------------------------------

// DropForeignKey represents removing a foreign key constraint.
type DropForeignKey struct {
	TableName string `yaml:"table"`
	Name      string `yaml:"name"` // Constraint name
}

func (op *DropForeignKey) Type() OpType  { return OpDropForeignKey }
func (op *DropForeignKey) Table() string { return op.TableName }

func (op *DropForeignKey) Validate() error {
	if op.TableName == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "table name is required for drop foreign key")
	}
	if op.Name == "" {
		return anerr.New(anerr.ErrSchemaInvalid, "constraint name is required for drop foreign key").
			WithTable(op.TableName)
	}
	return nil
}

// ValidateAll validates every operation in a list, returning the first error.
func ValidateAll(ops []Operation) error {
	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return err
		}
	}
	return nil
}
