package engine

import (
	"time"

	"github.com/anvildb/anvil/internal/ast"
)

// timestampLayout is the fixed-width migration timestamp format. Lexical
// order equals chronological order.
const timestampLayout = "20060102150405"

// NewTimestamp returns the current UTC time as a migration timestamp.
func NewTimestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

// Migration is one on-disk migration script: a timestamped name plus the
// forward and backward operation lists.
type Migration struct {
	Timestamp string
	Name      string
	Up        []ast.Operation
	Down      []ast.Operation
}

// Key is the identity shared between a script and its ledger row.
func (m *Migration) Key() string {
	return m.Timestamp + "_" + m.Name
}

// Record is one applied-migration row in the ledger table.
type Record struct {
	ID        int64
	Timestamp string
	Name      string
	AppliedAt time.Time
}

// Key matches Migration.Key.
func (r *Record) Key() string {
	return r.Timestamp + "_" + r.Name
}

// Status pairs an on-disk migration with its ledger state.
type Status struct {
	Migration *Migration
	Applied   bool
	AppliedAt time.Time
}
