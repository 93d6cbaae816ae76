// Package model converts declarative entity descriptors into an abstract
// schema model. Descriptors are explicit, pre-resolved structures: there is
// no runtime reflection, so analysis is a pure function over its inputs.
package model

import (
	"github.com/anvildb/anvil/internal/anerr"
	"github.com/anvildb/anvil/internal/ast"
)

// FieldKind classifies a declared entity field.
type FieldKind string

const (
	// KindScalar is a plain column-valued field.
	KindScalar FieldKind = "scalar"

	// KindReference is a foreign-key field: it produces a column plus a
	// ForeignKeyDef pointing at the referenced entity's table.
	KindReference FieldKind = "reference"

	// KindHasOne is an object-valued navigation field. It produces no
	// column; the owning side carries the foreign key.
	KindHasOne FieldKind = "has_one"

	// KindHasMany is a collection-valued navigation field. It produces no
	// column.
	KindHasMany FieldKind = "has_many"
)

// IsRelation reports whether the kind is a navigation field that maps to no
// column of its own.
func (k FieldKind) IsRelation() bool {
	return k == KindHasOne || k == KindHasMany
}

// FieldDef is one declared field of an entity descriptor.
type FieldDef struct {
	Name   string    `yaml:"name"`
	Kind   FieldKind `yaml:"kind,omitempty"` // defaults to scalar
	Type   string    `yaml:"type,omitempty"` // primitive type name, mapped to an abstract column type
	Column string    `yaml:"column,omitempty"`

	Required  bool `yaml:"required,omitempty"`
	MaxLength int  `yaml:"max_length,omitempty"`
	Key       bool `yaml:"key,omitempty"`
	Auto      bool `yaml:"auto,omitempty"`

	// Reference fields only.
	RefEntity string `yaml:"ref_entity,omitempty"`
	RefColumn string `yaml:"ref_column,omitempty"`
	OnDelete  string `yaml:"on_delete,omitempty"`
}

// IndexDecl is a declared index over entity fields.
type IndexDecl struct {
	Name   string   `yaml:"name,omitempty"` // generated when empty
	Fields []string `yaml:"fields"`
	Unique bool     `yaml:"unique,omitempty"`
}

// EntityDef is the declarative descriptor for one entity.
type EntityDef struct {
	Name      string      `yaml:"name"`
	TableName string      `yaml:"table,omitempty"` // explicit override; default is the pluralized entity name
	Fields    []FieldDef  `yaml:"fields"`
	Indexes   []IndexDecl `yaml:"indexes,omitempty"`
	Audit     bool        `yaml:"audit,omitempty"` // append created_at/updated_at/deleted_at
}

// fieldTypeMap maps declared primitive type names to abstract column types.
var fieldTypeMap = map[string]ast.ColType{
	"int":       ast.TypeInteger,
	"int32":     ast.TypeInteger,
	"int64":     ast.TypeInteger,
	"integer":   ast.TypeInteger,
	"string":    ast.TypeString,
	"text":      ast.TypeString,
	"float":     ast.TypeFloat,
	"float32":   ast.TypeFloat,
	"float64":   ast.TypeFloat,
	"double":    ast.TypeFloat,
	"bool":      ast.TypeBoolean,
	"boolean":   ast.TypeBoolean,
	"time":      ast.TypeDateTime,
	"datetime":  ast.TypeDateTime,
	"timestamp": ast.TypeDateTime,
}

// mapFieldType resolves a declared primitive type name to an abstract
// column type.
func mapFieldType(name string) (ast.ColType, error) {
	if t, ok := fieldTypeMap[name]; ok {
		return t, nil
	}
	return "", anerr.Newf(anerr.ErrInvalidType, "no column type mapping for field type %q", name)
}
