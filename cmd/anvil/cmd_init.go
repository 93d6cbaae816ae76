package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const modelScaffold = `# Entity model for anvil.
# Each entity becomes a table; field names map to snake_case columns.
entities:
  - name: User
    audit: true
    fields:
      - name: email
        type: string
        required: true
        max_length: 120
    indexes:
      - fields: [email]
        unique: true
`

const configScaffold = `# anvil configuration.
# database_url supports ${VAR} interpolation from the environment.
database_url: ${DATABASE_URL}
model_file: ./models.yaml
migrations_dir: ./migrations
`

// initCmd scaffolds a new anvil project in the current directory.
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize project structure (models.yaml, migrations/, anvil.yaml)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll("migrations", 0o755); err != nil {
				return fmt.Errorf("failed to create migrations directory: %w", err)
			}

			created := []string{"migrations/"}
			for _, f := range []struct {
				path, content string
			}{
				{"models.yaml", modelScaffold},
				{"anvil.yaml", configScaffold},
			} {
				if _, err := os.Stat(f.path); err == nil {
					printWarning("%s already exists, skipping", f.path)
					continue
				}
				if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", f.path, err)
				}
				created = append(created, f.path)
			}

			printHeader("Project initialized")
			for _, path := range created {
				printSuccess("created %s", path)
			}
			fmt.Println(dim("\nNext: edit models.yaml, set DATABASE_URL, then run `anvil new init`"))
			return nil
		},
	}
}
