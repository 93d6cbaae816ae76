package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// newCmd creates a new migration script, auto-generated from the model
// diff unless --empty is given.
func newCmd() *cobra.Command {
	var empty bool

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create migration (auto-generated from model changes)",
		Args:  cobra.ExactArgs(1),
		Example: `  # Generate a migration from the model diff
  anvil new add_users

  # Create an empty scaffold to fill in by hand
  anvil new custom_change --empty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			client := mustClient()
			defer client.Close()

			var path string
			var err error
			if empty {
				path, err = client.AddEmptyMigration(name)
			} else {
				path, err = client.AddMigration(context.Background(), name)
			}
			if err != nil {
				return err
			}

			printSuccess("created %s", path)
			fmt.Println(dim("Run `anvil plan` to preview the SQL, `anvil migrate` to apply."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&empty, "empty", false, "Create an empty migration scaffold")
	return cmd
}
