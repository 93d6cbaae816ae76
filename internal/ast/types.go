// Package ast defines the abstract representation of database schema
// structures and operations. Declared entity models and migration scripts are
// both converted to Operations before being rendered to SQL.
package ast

// ColType is the abstract column type shared by all dialects.
type ColType string

const (
	// TypeInteger is a 64-bit integer column.
	TypeInteger ColType = "integer"

	// TypeString is a bounded character column (see ColumnDef.MaxLength).
	TypeString ColType = "string"

	// TypeFloat is a double-precision floating point column.
	TypeFloat ColType = "float"

	// TypeBoolean is a boolean column.
	TypeBoolean ColType = "boolean"

	// TypeDateTime is a timestamp column.
	TypeDateTime ColType = "datetime"
)

// ValidColType reports whether t is one of the supported abstract types.
func ValidColType(t ColType) bool {
	switch t {
	case TypeInteger, TypeString, TypeFloat, TypeBoolean, TypeDateTime:
		return true
	}
	return false
}

// OpType represents the type of a schema operation.
type OpType int

const (
	// OpCreateTable creates a new table with columns, primary key, and inline constraints.
	OpCreateTable OpType = iota

	// OpDropTable removes an existing table.
	OpDropTable

	// OpAddColumn adds a new column to an existing table.
	OpAddColumn

	// OpDropColumn removes a column from an existing table.
	OpDropColumn

	// OpCreateIndex creates a new index on one or more columns.
	OpCreateIndex

	// OpDropIndex removes an existing index.
	OpDropIndex

	// OpAddForeignKey adds a foreign key constraint.
	OpAddForeignKey

	// OpDropForeignKey removes a foreign key constraint.
	OpDropForeignKey
)

// String returns the string representation of an OpType.
func (o OpType) String() string {
	switch o {
	case OpCreateTable:
		return "CreateTable"
	case OpDropTable:
		return "DropTable"
	case OpAddColumn:
		return "AddColumn"
	case OpDropColumn:
		return "DropColumn"
	case OpCreateIndex:
		return "CreateIndex"
	case OpDropIndex:
		return "DropIndex"
	case OpAddForeignKey:
		return "AddForeignKey"
	case OpDropForeignKey:
		return "DropForeignKey"
	default:
		return "Unknown"
	}
}
