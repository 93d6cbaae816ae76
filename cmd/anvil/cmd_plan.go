package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// planCmd previews SQL without touching the database schema.
func planCmd() *cobra.Command {
	var fromModel bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview SQL for pending migrations",
		Example: `  # Show the SQL of all pending migration scripts
  anvil plan

  # Diff the model against the live schema instead
  anvil plan --model`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := mustClient()
			defer client.Close()
			ctx := context.Background()

			if fromModel {
				plan, err := client.GenerateMigration(ctx)
				if err != nil {
					return err
				}
				if plan.Empty() {
					fmt.Println(dim("Model and database are in sync."))
					return nil
				}
				printHeader("-- up")
				for _, stmt := range plan.UpSQL {
					fmt.Println(stmt + ";")
				}
				printHeader("-- down")
				for _, stmt := range plan.DownSQL {
					fmt.Println(stmt + ";")
				}
				return nil
			}

			stmts, err := client.PlanSQL(ctx)
			if err != nil {
				return err
			}
			if len(stmts) == 0 {
				fmt.Println(dim("No pending migrations."))
				return nil
			}
			for _, stmt := range stmts {
				fmt.Println(stmt + ";")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromModel, "model", false, "Diff the entity model against the live schema")
	return cmd
}
