package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// rollbackCmd reverts the most recently applied migrations.
func rollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback [steps]",
		Short: "Rollback migrations (default: 1 step)",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # Revert the most recent migration
  anvil rollback

  # Revert the last three
  anvil rollback 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}

			client := mustClient()
			defer client.Close()

			rolled, err := client.RollbackMigration(context.Background(), steps)
			for _, key := range rolled {
				printSuccess("rolled back %s", key)
			}
			if err != nil {
				return err
			}
			if len(rolled) == 0 {
				fmt.Println(dim("Nothing to roll back."))
			}
			return nil
		},
	}
}
