package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd shows every on-disk migration with its ledger state.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied/pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := mustClient()
			defer client.Close()

			summary, err := client.Status(context.Background())
			if err != nil {
				return err
			}
			if len(summary.Migrations) == 0 {
				fmt.Println(dim("No migrations found."))
				return nil
			}

			printHeader("Migrations")
			for _, m := range summary.Migrations {
				if m.Applied {
					fmt.Printf("  %s %s %s\n",
						ui.Success.Render("applied"), m.Key,
						dim(m.AppliedAt.Format("2006-01-02 15:04:05")))
				} else {
					fmt.Printf("  %s %s\n", ui.Warning.Render("pending"), m.Key)
				}
			}

			fmt.Println()
			if summary.Pending == 0 {
				printSuccess("database is up to date")
			} else {
				printWarning("%d pending migration(s); run `anvil migrate`", summary.Pending)
			}
			return nil
		},
	}
}
