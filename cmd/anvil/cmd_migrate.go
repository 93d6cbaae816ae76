package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// migrateCmd applies pending migrations.
func migrateCmd() *cobra.Command {
	var target string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		Long: `Apply pending migrations to the database in timestamp order.

Each script's forward operations run one statement at a time; the first
failure stops the run and the failed script is not recorded as applied.`,
		Example: `  # Apply all pending migrations
  anvil migrate

  # Apply only up to a specific migration
  anvil migrate --to 20240101120000_init

  # Preview SQL without executing
  anvil migrate --dry`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := mustClient()
			defer client.Close()
			ctx := context.Background()

			if dryRun {
				stmts, err := client.PlanSQL(ctx)
				if err != nil {
					return err
				}
				for _, stmt := range stmts {
					fmt.Println(stmt + ";")
				}
				return nil
			}

			start := time.Now()
			applied, err := client.UpdateDatabase(ctx, target)
			for _, key := range applied {
				printSuccess("applied %s", key)
			}
			if err != nil {
				printError(err)
				os.Exit(1)
			}

			if len(applied) == 0 {
				fmt.Println(dim("Database is up to date."))
				return nil
			}
			printSuccess("applied %d migration(s) in %s", len(applied), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "", "Apply only migrations with key <= target")
	cmd.Flags().BoolVar(&dryRun, "dry", false, "Print SQL without executing")
	return cmd
}
