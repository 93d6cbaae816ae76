package engine

import (
	"log/slog"

	"github.com/anvildb/anvil/internal/ast"
	"github.com/anvildb/anvil/internal/introspect"
	"github.com/anvildb/anvil/internal/strutil"
)

// ChangeSet is the planner's output: the forward operation list and its
// exact inverse. Both lists are ordered; execution must never reorder them.
type ChangeSet struct {
	Up   []ast.Operation
	Down []ast.Operation
}

// IsEmpty reports whether the plan contains no operations. Callers use it
// to fall back to an empty scaffold script instead of failing.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.Up) == 0 && len(c.Down) == 0
}

// tableDelta records what the up-plan added for one table, so the
// down-plan can mirror it exactly.
type tableDelta struct {
	name        string
	created     bool
	columns     []*ast.DropColumn
	indexes     []*ast.DropIndex
	foreignKeys []*ast.DropForeignKey
}

// Plan diffs the declared model against the live snapshot and produces the
// ordered up operations plus their inverse. Tables are processed in
// dependency order; the down-plan walks the same tables in reverse.
//
// Indexes and foreign keys are diffed by name against the snapshot,
// symmetric with the column diff, so an unchanged table yields no
// operations. Foreign keys whose target table does not resolve within the
// model are omitted with a diagnostic; the owning table's other operations
// still emit.
func Plan(m *ast.SchemaModel, snap *introspect.Snapshot) *ChangeSet {
	order := SortTables(m)

	cs := &ChangeSet{}
	deltas := make([]*tableDelta, 0, len(order))

	for _, name := range order {
		tbl := m.Get(name)
		delta := &tableDelta{name: name}

		if !snap.HasTable(name) {
			cs.Up = append(cs.Up, &ast.CreateTable{Name: name, Columns: tbl.Columns})
			delta.created = true
			cs.Up = append(cs.Up, planIndexes(tbl, nil, delta)...)
			cs.Up = append(cs.Up, planForeignKeys(m, tbl, nil, delta)...)
		} else {
			for _, col := range tbl.Columns {
				if snap.HasColumn(name, col.Name) {
					continue
				}
				cs.Up = append(cs.Up, &ast.AddColumn{TableName: name, Column: col})
				delta.columns = append(delta.columns, &ast.DropColumn{TableName: name, Name: col.Name})
			}
			cs.Up = append(cs.Up, planIndexes(tbl, snap, delta)...)
			cs.Up = append(cs.Up, planForeignKeys(m, tbl, snap, delta)...)
		}

		deltas = append(deltas, delta)
	}

	// Down mirrors up: reverse table order; per altered table drop foreign
	// keys, then indexes, then columns, each in reverse creation order.
	for i := len(deltas) - 1; i >= 0; i-- {
		delta := deltas[i]
		if delta.created {
			cs.Down = append(cs.Down, &ast.DropTable{Name: delta.name})
			continue
		}
		for j := len(delta.foreignKeys) - 1; j >= 0; j-- {
			cs.Down = append(cs.Down, delta.foreignKeys[j])
		}
		for j := len(delta.indexes) - 1; j >= 0; j-- {
			cs.Down = append(cs.Down, delta.indexes[j])
		}
		for j := len(delta.columns) - 1; j >= 0; j-- {
			cs.Down = append(cs.Down, delta.columns[j])
		}
	}

	return cs
}

// planIndexes emits CreateIndex for declared indexes absent from the
// snapshot. A nil snapshot (new table) emits all of them.
func planIndexes(tbl *ast.TableDef, snap *introspect.Snapshot, delta *tableDelta) []ast.Operation {
	var ops []ast.Operation
	for _, idx := range tbl.Indexes {
		name := idx.Name
		if name == "" {
			name = strutil.IndexName(tbl.Name, idx.Unique, idx.Columns...)
		}
		if snap != nil && snap.HasIndex(tbl.Name, name) {
			continue
		}
		ops = append(ops, &ast.CreateIndex{
			TableName: tbl.Name,
			Name:      name,
			Columns:   idx.Columns,
			Unique:    idx.Unique,
		})
		delta.indexes = append(delta.indexes, &ast.DropIndex{TableName: tbl.Name, Name: name})
	}
	return ops
}

// planForeignKeys emits AddForeignKey for declared foreign keys absent
// from the snapshot whose target table resolves within the model.
func planForeignKeys(m *ast.SchemaModel, tbl *ast.TableDef, snap *introspect.Snapshot, delta *tableDelta) []ast.Operation {
	var ops []ast.Operation
	for _, fk := range tbl.ForeignKeys {
		target := m.Get(fk.RefTable)
		if target == nil {
			slog.Warn("omitting foreign key, target table not in model",
				"table", tbl.Name, "column", fk.Column, "ref_table", fk.RefTable)
			continue
		}

		name := fk.Name
		if name == "" {
			name = strutil.ForeignKeyName(tbl.Name, fk.Column)
		}
		if snap != nil && snap.HasForeignKey(tbl.Name, name) {
			continue
		}

		refColumn := fk.RefColumn
		if refColumn == "" {
			if pk := target.PrimaryKey(); pk != nil {
				refColumn = pk.Name
			} else {
				refColumn = "id"
			}
		}

		ops = append(ops, &ast.AddForeignKey{
			TableName: tbl.Name,
			Name:      name,
			Column:    fk.Column,
			RefTable:  fk.RefTable,
			RefColumn: refColumn,
			OnDelete:  fk.OnDelete,
		})
		delta.foreignKeys = append(delta.foreignKeys, &ast.DropForeignKey{TableName: tbl.Name, Name: name})
	}
	return ops
}
