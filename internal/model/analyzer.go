package model

import (
	"log/slog"
	"strings"

	"github.com/anvildb/anvil/internal/ast"
	"github.com/anvildb/anvil/internal/strutil"
)

// Analyze converts entity descriptors into a schema model. Entities that
// cannot be resolved are skipped with a diagnostic; they never abort the
// run. The returned model preserves descriptor declaration order.
func Analyze(entities []EntityDef) (*ast.SchemaModel, error) {
	tableNames := resolveTableNames(entities)

	var tables []*ast.TableDef
	for _, ent := range entities {
		tbl, err := analyzeEntity(ent, tableNames)
		if err != nil {
			slog.Warn("skipping entity", "entity", ent.Name, "reason", err)
			continue
		}
		tables = append(tables, tbl)
	}

	return ast.BuildSchemaModel(tables)
}

// resolveTableNames builds the entity-name → table-name map used to resolve
// reference targets. All entities participate, including ones later skipped,
// so a bad entity never dangles its referrers.
func resolveTableNames(entities []EntityDef) map[string]string {
	names := make(map[string]string, len(entities))
	for _, ent := range entities {
		if ent.Name == "" {
			continue
		}
		names[ent.Name] = tableNameFor(ent)
	}
	return names
}

func tableNameFor(ent EntityDef) string {
	if ent.TableName != "" {
		return ent.TableName
	}
	return strutil.Pluralize(ent.Name)
}

// analyzeEntity resolves one descriptor into a table definition.
func analyzeEntity(ent EntityDef, tableNames map[string]string) (*ast.TableDef, error) {
	if ent.Name == "" && ent.TableName == "" {
		return nil, errUnresolvableName
	}

	tbl := &ast.TableDef{Name: tableNameFor(ent)}

	hasKey := false
	for _, f := range ent.Fields {
		if f.Key {
			hasKey = true
		}
	}
	// Conventional surrogate key when no field is marked as key.
	if !hasKey {
		tbl.Columns = append(tbl.Columns, &ast.ColumnDef{
			Name:          "id",
			Type:          ast.TypeInteger,
			PrimaryKey:    true,
			AutoIncrement: true,
		})
	}

	for _, f := range ent.Fields {
		if f.Kind.IsRelation() {
			slog.Debug("skipping relation field", "entity", ent.Name, "field", f.Name, "kind", f.Kind)
			continue
		}

		col, fk, err := analyzeField(tbl.Name, f, tableNames)
		if err != nil {
			return nil, err
		}
		tbl.Columns = append(tbl.Columns, col)
		if fk != nil {
			tbl.ForeignKeys = append(tbl.ForeignKeys, fk)
		}
	}

	if ent.Audit {
		tbl.Columns = append(tbl.Columns, auditColumns()...)
	}

	for _, idx := range ent.Indexes {
		cols := make([]string, len(idx.Fields))
		for i, f := range idx.Fields {
			cols[i] = columnNameFor(FieldDef{Name: f})
		}
		name := idx.Name
		if name == "" {
			name = strutil.IndexName(tbl.Name, idx.Unique, cols...)
		}
		tbl.Indexes = append(tbl.Indexes, &ast.IndexDef{
			Name:    name,
			Columns: cols,
			Unique:  idx.Unique,
		})
	}

	if err := tbl.Validate(); err != nil {
		return nil, err
	}
	return tbl, nil
}

// analyzeField resolves a scalar or reference field to a column and, for
// references, a foreign key whose constraint name is deterministic.
func analyzeField(table string, f FieldDef, tableNames map[string]string) (*ast.ColumnDef, *ast.ForeignKeyDef, error) {
	col := &ast.ColumnDef{
		Name:          columnNameFor(f),
		Nullable:      !f.Required && !f.Key,
		MaxLength:     f.MaxLength,
		PrimaryKey:    f.Key,
		AutoIncrement: f.Auto,
	}

	if f.Kind == KindReference {
		col.Type = ast.TypeInteger
		refTable, ok := tableNames[f.RefEntity]
		if !ok {
			// Conventional fallback: the target may live outside this
			// descriptor set but still exist in the database.
			refTable = strutil.Pluralize(f.RefEntity)
		}
		fk := &ast.ForeignKeyDef{
			Name:      strutil.ForeignKeyName(table, col.Name),
			Column:    col.Name,
			RefTable:  refTable,
			RefColumn: f.RefColumn,
			OnDelete:  f.OnDelete,
		}
		return col, fk, nil
	}

	t, err := mapFieldType(f.Type)
	if err != nil {
		return nil, nil, err
	}
	col.Type = t
	return col, nil, nil
}

// columnNameFor derives a column name from a field: explicit override, else
// snake_case of the field name with a conventional _id suffix for references.
func columnNameFor(f FieldDef) string {
	if f.Column != "" {
		return f.Column
	}
	name := strutil.ToSnakeCase(f.Name)
	if f.Kind == KindReference && !strings.HasSuffix(name, "_id") {
		name += "_id"
	}
	return name
}

// auditColumns returns the opt-in audit timestamp columns. Only deleted_at
// is nullable; it doubles as the soft-delete marker.
func auditColumns() []*ast.ColumnDef {
	return []*ast.ColumnDef{
		{Name: "created_at", Type: ast.TypeDateTime},
		{Name: "updated_at", Type: ast.TypeDateTime},
		{Name: "deleted_at", Type: ast.TypeDateTime, Nullable: true},
	}
}
