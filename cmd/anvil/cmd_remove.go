package main

import (
	"github.com/spf13/cobra"
)

// removeCmd deletes migration scripts by descriptive name. The ledger is
// not touched: rollback applied migrations before removing them.
func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a migration script by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := mustClient()
			defer client.Close()

			removed, err := client.RemoveMigration(args[0])
			if err != nil {
				return err
			}
			for _, key := range removed {
				printSuccess("removed %s", key)
			}
			return nil
		},
	}
}
