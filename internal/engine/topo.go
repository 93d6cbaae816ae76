// Package engine plans, serializes, and applies schema migrations. It sits
// between the declarative model (internal/model, internal/ast), the live
// snapshot (internal/introspect), and SQL rendering (internal/dialect).
package engine

import (
	"github.com/anvildb/anvil/internal/ast"
)

// SortTables orders the model's tables so that for every foreign key from
// table B to table A (A != B), A precedes B.
//
// The order is seeded with all tables that declare no foreign keys, then
// repeatedly extended with any table whose every foreign-key target is
// already ordered. Iterations are bounded by the table count so the loop
// always terminates. Self-referencing foreign keys never block ordering,
// and targets outside the model do not block either. Tables still
// unordered after the bound (mutual cycles across two or more tables) are
// appended at the end in declaration order; cycles are deprioritized, not
// rejected.
func SortTables(m *ast.SchemaModel) []string {
	ordered := make([]string, 0, m.Len())
	placed := make(map[string]bool, m.Len())

	appendTable := func(name string) {
		ordered = append(ordered, name)
		placed[name] = true
	}

	for _, t := range m.Tables() {
		if len(t.ForeignKeys) == 0 {
			appendTable(t.Name)
		}
	}

	for i := 0; i < m.Len(); i++ {
		progressed := false
		for _, t := range m.Tables() {
			if placed[t.Name] {
				continue
			}
			if dependenciesPlaced(t, m, placed) {
				appendTable(t.Name)
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	// Unorderable remainder: mutual cycles, kept in declaration order.
	for _, t := range m.Tables() {
		if !placed[t.Name] {
			appendTable(t.Name)
		}
	}

	return ordered
}

// dependenciesPlaced reports whether every foreign-key target of t is
// already ordered. Self-references and targets outside the model are
// ignored.
func dependenciesPlaced(t *ast.TableDef, m *ast.SchemaModel, placed map[string]bool) bool {
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == t.Name {
			continue
		}
		if !m.Has(fk.RefTable) {
			continue
		}
		if !placed[fk.RefTable] {
			return false
		}
	}
	return true
}

// ReverseOrder returns a copy of the order reversed; rollback order is the
// exact reverse of apply order.
func ReverseOrder(order []string) []string {
	out := make([]string, len(order))
	for i, name := range order {
		out[len(order)-1-i] = name
	}
	return out
}
