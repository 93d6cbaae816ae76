// Package main provides the CLI for the Anvil database migration tool.
// Anvil turns a declarative YAML entity model into versioned, reversible
// migration scripts and applies them against a live database.
//
// Usage:
//
//	anvil init                   # Create models.yaml, migrations/, anvil.yaml
//	anvil new <name>             # Create migration (auto-generated from model diff)
//	anvil plan                   # Preview SQL for pending migrations
//	anvil migrate                # Apply pending migrations
//	anvil status                 # Show applied/pending migrations
//	anvil rollback [steps]       # Rollback (default: 1 step)
//	anvil remove <name>          # Delete a migration script
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// Global flags
var (
	databaseURL string
	configFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "anvil",
		Short:   "Declarative database migration tool",
		Long:    `Anvil is a database migration tool that diffs a declarative YAML entity model against the live schema and produces versioned, reversible migration scripts.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&databaseURL, "database-url", "d", "", "Database connection URL")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "anvil.yaml", "Path to config file")

	rootCmd.AddCommand(
		initCmd(),
		newCmd(),
		planCmd(),
		migrateCmd(),
		statusCmd(),
		rollbackCmd(),
		removeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
