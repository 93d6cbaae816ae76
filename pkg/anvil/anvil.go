// Package anvil is the public entry point for the anvil migration engine.
// It turns a declarative entity model into versioned, reversible migration
// scripts, applies them against a live database, and tracks which have
// been applied.
//
// Example:
//
//	client, err := anvil.New(
//	    anvil.WithDatabaseURL("postgres://localhost/mydb"),
//	    anvil.WithModelFile("./models.yaml"),
//	    anvil.WithMigrationsDir("./migrations"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if _, err := client.UpdateDatabase(context.Background(), ""); err != nil {
//	    log.Fatal(err)
//	}
package anvil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anvildb/anvil/internal/dialect"
	"github.com/anvildb/anvil/internal/engine"
	"github.com/anvildb/anvil/internal/introspect"
	"github.com/anvildb/anvil/internal/model"
)

// Client orchestrates migration generation, application, and rollback.
type Client struct {
	db      *sql.DB
	ownsDB  bool
	dialect dialect.Dialect
	config  *Config
	source  *engine.Source
}

// New creates a new Client with the given options. At minimum,
// WithDatabaseURL (or WithDB plus WithDialect) must be provided; the
// dialect is auto-detected from the URL when not set explicitly.
func New(opts ...Option) (*Client, error) {
	cfg := &Config{
		MigrationsDir: "./migrations",
		ModelFile:     "./models.yaml",
		Timeout:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Client{
		config: cfg,
		source: engine.NewSource(cfg.MigrationsDir),
	}

	if cfg.db != nil {
		if cfg.Dialect == "" {
			return nil, ErrMissingDialect
		}
		d, err := dialect.Get(cfg.Dialect)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, cfg.Dialect)
		}
		c.db = cfg.db
		c.dialect = d
		return c, nil
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.Dialect == "" {
		cfg.Dialect = detectDialect(cfg.DatabaseURL)
	}
	d, err := dialect.Get(cfg.Dialect)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, cfg.Dialect)
	}

	db, err := openDatabase(cfg.DatabaseURL, d.Name())
	if err != nil {
		return nil, &ConnectionError{URL: redactURL(cfg.DatabaseURL), Dialect: d.Name(), Cause: err}
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{URL: redactURL(cfg.DatabaseURL), Dialect: d.Name(), Cause: err}
	}

	c.db = db
	c.ownsDB = true
	c.dialect = d
	return c, nil
}

// Close releases the database connection if the client opened it.
func (c *Client) Close() error {
	if c.db != nil && c.ownsDB {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the database dialect name.
func (c *Client) Dialect() string {
	return c.dialect.Name()
}

// migrator wires the engine components for apply/rollback operations.
func (c *Client) migrator() *engine.Migrator {
	return engine.NewMigrator(c.db, c.dialect, c.source)
}

// entities resolves the configured entity model: explicit descriptors
// first, else the YAML model file.
func (c *Client) entities() ([]EntityDef, error) {
	if len(c.config.Entities) > 0 {
		return c.config.Entities, nil
	}
	if c.config.ModelFile != "" {
		if _, err := os.Stat(c.config.ModelFile); err == nil {
			return model.LoadFile(c.config.ModelFile)
		}
	}
	return nil, ErrNoModel
}

// generate runs the full pipeline: analyze entities, snapshot the live
// schema, sort, and plan.
func (c *Client) generate(ctx context.Context) (*engine.ChangeSet, error) {
	entities, err := c.entities()
	if err != nil {
		return nil, err
	}
	schema, err := model.Analyze(entities)
	if err != nil {
		return nil, err
	}
	snap := introspect.New(ctx, c.db, c.dialect.Name())
	return engine.Plan(schema, snap), nil
}

// MigrationPlan is a rendered preview of a generated migration.
type MigrationPlan struct {
	UpSQL   []string
	DownSQL []string
}

// Empty reports whether the plan contains no statements.
func (p *MigrationPlan) Empty() bool {
	return len(p.UpSQL) == 0 && len(p.DownSQL) == 0
}

// GenerateMigration diffs the entity model against the live database and
// returns the planned forward and rollback SQL without writing or
// executing anything.
func (c *Client) GenerateMigration(ctx context.Context) (*MigrationPlan, error) {
	cs, err := c.generate(ctx)
	if err != nil {
		return nil, err
	}
	runner := c.migrator().Runner()
	up, err := runner.RenderAll(cs.Up)
	if err != nil {
		return nil, err
	}
	down, err := runner.RenderAll(cs.Down)
	if err != nil {
		return nil, err
	}
	return &MigrationPlan{UpSQL: up, DownSQL: down}, nil
}

// AddMigration generates a new timestamped migration script from the
// model diff and writes it to the migrations directory. When generation
// yields nothing (no model, zero entities, or net-zero diff), an empty
// scaffold script is written instead. Returns the script path.
func (c *Client) AddMigration(ctx context.Context, name string) (string, error) {
	mig := &engine.Migration{
		Timestamp: engine.NewTimestamp(),
		Name:      name,
	}

	cs, err := c.generate(ctx)
	switch {
	case err == nil && !cs.IsEmpty():
		mig.Up = cs.Up
		mig.Down = cs.Down
	case err != nil && err != ErrNoModel:
		return "", err
	}
	// Empty scaffold fallback: the file is still written so the author can
	// fill the operation lists in by hand.

	return c.source.Write(mig)
}

// AddEmptyMigration writes an empty scaffold script without consulting
// the model or the database.
func (c *Client) AddEmptyMigration(name string) (string, error) {
	return c.source.Write(&engine.Migration{
		Timestamp: engine.NewTimestamp(),
		Name:      name,
	})
}

// UpdateDatabase applies all pending migrations ascending, optionally
// bounded to scripts whose key is <= targetKey. Returns the keys applied.
func (c *Client) UpdateDatabase(ctx context.Context, targetKey string) ([]string, error) {
	applied, err := c.migrator().Apply(ctx, targetKey)
	return migrationKeys(applied), err
}

// RollbackMigration reverts the most recent steps applied migrations.
// Returns the keys rolled back.
func (c *Client) RollbackMigration(ctx context.Context, steps int) ([]string, error) {
	rolled, err := c.migrator().Rollback(ctx, steps)
	return migrationKeys(rolled), err
}

// MigrationInfo describes one migration script and its ledger state.
type MigrationInfo struct {
	Key       string
	Timestamp string
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// PendingMigrations returns the scripts not yet recorded in the ledger,
// ascending by timestamp.
func (c *Client) PendingMigrations(ctx context.Context) ([]MigrationInfo, error) {
	pending, err := c.migrator().Pending(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]MigrationInfo, 0, len(pending))
	for _, m := range pending {
		infos = append(infos, MigrationInfo{Key: m.Key(), Timestamp: m.Timestamp, Name: m.Name})
	}
	return infos, nil
}

// AllMigrations returns every on-disk script with its applied state,
// ascending by timestamp.
func (c *Client) AllMigrations(ctx context.Context) ([]MigrationInfo, error) {
	statuses, err := c.migrator().All(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]MigrationInfo, 0, len(statuses))
	for _, st := range statuses {
		infos = append(infos, MigrationInfo{
			Key:       st.Migration.Key(),
			Timestamp: st.Migration.Timestamp,
			Name:      st.Migration.Name,
			Applied:   st.Applied,
			AppliedAt: st.AppliedAt,
		})
	}
	return infos, nil
}

// StatusSummary aggregates the migration state of a database.
type StatusSummary struct {
	Migrations []MigrationInfo
	Applied    int
	Pending    int
}

// Status returns every migration with its applied state plus counts.
func (c *Client) Status(ctx context.Context) (*StatusSummary, error) {
	all, err := c.AllMigrations(ctx)
	if err != nil {
		return nil, err
	}
	summary := &StatusSummary{Migrations: all}
	for _, m := range all {
		if m.Applied {
			summary.Applied++
		} else {
			summary.Pending++
		}
	}
	return summary, nil
}

// RemoveMigration deletes the script files matching the descriptive name.
// The ledger is not touched. Returns the removed keys.
func (c *Client) RemoveMigration(name string) ([]string, error) {
	return c.source.Remove(name)
}

// PlanSQL renders the forward SQL of all pending migrations without
// executing anything.
func (c *Client) PlanSQL(ctx context.Context) ([]string, error) {
	migrator := c.migrator()
	pending, err := migrator.Pending(ctx)
	if err != nil {
		return nil, err
	}
	runner := migrator.Runner()

	var stmts []string
	for _, m := range pending {
		rendered, err := runner.RenderAll(m.Up)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, rendered...)
	}
	return stmts, nil
}

func migrationKeys(migrations []*engine.Migration) []string {
	keys := make([]string, 0, len(migrations))
	for _, m := range migrations {
		keys = append(keys, m.Key())
	}
	return keys
}

// detectDialect auto-detects the database dialect from the connection URL.
func detectDialect(url string) string {
	lower := strings.ToLower(url)

	switch {
	case strings.HasPrefix(lower, "postgres://"),
		strings.HasPrefix(lower, "postgresql://"):
		return "postgres"

	case strings.HasPrefix(lower, "mysql://"):
		return "mysql"

	case strings.HasPrefix(lower, "sqlserver://"),
		strings.HasPrefix(lower, "mssql://"):
		return "sqlserver"

	case strings.HasPrefix(lower, "sqlite://"),
		strings.HasPrefix(lower, "sqlite3://"),
		strings.HasPrefix(lower, "file:"),
		strings.HasSuffix(lower, ".db"),
		strings.HasSuffix(lower, ".sqlite"),
		strings.HasSuffix(lower, ".sqlite3"):
		return "sqlite"
	}

	return "postgres"
}

// openDatabase opens a connection with the driver matching the dialect.
// Drivers are registered by the caller (the CLI blank-imports all four).
func openDatabase(url, dialectName string) (*sql.DB, error) {
	switch dialectName {
	case "postgres":
		return sql.Open("postgres", url)
	case "mysql":
		// The mysql driver expects a DSN, not a URL.
		return sql.Open("mysql", strings.TrimPrefix(url, "mysql://"))
	case "sqlite":
		return sql.Open("sqlite", sqliteDSN(url))
	case "sqlserver":
		return sql.Open("sqlserver", url)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, dialectName)
	}
}

// sqliteDSN converts sqlite:// URLs to plain file paths.
func sqliteDSN(url string) string {
	for _, prefix := range []string{"sqlite3://", "sqlite://"} {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return url
}
