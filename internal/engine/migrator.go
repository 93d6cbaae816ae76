package engine

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/anvildb/anvil/internal/dialect"
)

// Migrator orchestrates apply and rollback: it joins the on-disk script
// source with the ledger and pushes operation lists through the runner.
type Migrator struct {
	source *Source
	ledger *Ledger
	runner *Runner
}

// NewMigrator wires a migrator from a connection, dialect, and script
// source.
func NewMigrator(db *sql.DB, d dialect.Dialect, source *Source) *Migrator {
	return &Migrator{
		source: source,
		ledger: NewLedger(db, d),
		runner: NewRunner(db, d),
	}
}

// Runner exposes the underlying runner for dry-run rendering.
func (m *Migrator) Runner() *Runner {
	return m.runner
}

// Pending returns the on-disk scripts whose key is absent from the ledger,
// ascending by timestamp.
func (m *Migrator) Pending(ctx context.Context) ([]*Migration, error) {
	scripts, err := m.source.List()
	if err != nil {
		return nil, err
	}
	applied, err := m.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	appliedKeys := make(map[string]bool, len(applied))
	for _, r := range applied {
		appliedKeys[r.Key()] = true
	}

	var pending []*Migration
	for _, s := range scripts {
		if !appliedKeys[s.Key()] {
			pending = append(pending, s)
		}
	}
	return pending, nil
}

// All returns every on-disk script paired with its ledger state, ascending
// by timestamp.
func (m *Migrator) All(ctx context.Context) ([]*Status, error) {
	scripts, err := m.source.List()
	if err != nil {
		return nil, err
	}
	applied, err := m.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*Record, len(applied))
	for _, r := range applied {
		byKey[r.Key()] = r
	}

	statuses := make([]*Status, 0, len(scripts))
	for _, s := range scripts {
		st := &Status{Migration: s}
		if r, ok := byKey[s.Key()]; ok {
			st.Applied = true
			st.AppliedAt = r.AppliedAt
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// Apply runs all pending migrations ascending, optionally bounded to keys
// <= targetKey. Each script's up operations execute in order; a ledger row
// is recorded only after the whole script succeeds. A failure stops
// further scripts.
func (m *Migrator) Apply(ctx context.Context, targetKey string) ([]*Migration, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	var done []*Migration
	for _, mig := range pending {
		if targetKey != "" && mig.Key() > targetKey {
			break
		}
		slog.Info("applying migration", "migration", mig.Key(), "operations", len(mig.Up))
		if err := m.runner.Run(ctx, mig.Up); err != nil {
			return done, err
		}
		if err := m.ledger.RecordApplied(ctx, mig); err != nil {
			return done, err
		}
		done = append(done, mig)
	}
	return done, nil
}

// Rollback reverts the most recent steps applied migrations that still
// have an on-disk script, most-recent-first. Each script's down operations
// execute in order; the ledger row is deleted only after the whole script
// succeeds.
func (m *Migrator) Rollback(ctx context.Context, steps int) ([]*Migration, error) {
	if steps <= 0 {
		return nil, nil
	}

	scripts, err := m.source.List()
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*Migration, len(scripts))
	for _, s := range scripts {
		byKey[s.Key()] = s
	}

	applied, err := m.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	var done []*Migration
	for i := len(applied) - 1; i >= 0 && len(done) < steps; i-- {
		mig, ok := byKey[applied[i].Key()]
		if !ok {
			slog.Warn("skipping rollback, script missing", "migration", applied[i].Key())
			continue
		}
		slog.Info("rolling back migration", "migration", mig.Key(), "operations", len(mig.Down))
		if err := m.runner.Run(ctx, mig.Down); err != nil {
			return done, err
		}
		if err := m.ledger.DeleteRecord(ctx, mig); err != nil {
			return done, err
		}
		done = append(done, mig)
	}
	return done, nil
}
