package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/relgrid/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new RelGrid project",
	Long:  `Create a default relgrid.config.json and an example seed dataset in the current directory.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitializeProject(); err != nil {
			return err
		}
		color.Green("✅ Created %s", config.ConfigFileName)

		if err := writeExampleDataset(); err != nil {
			return err
		}

		fmt.Println()
		color.Cyan("Next steps:")
		color.White("  1. Set DATABASE_URL in your environment or .env file")
		color.White("  2. relgrid seed seed/contacts.yaml")
		color.White("  3. relgrid serve")
		return nil
	},
}

const exampleDataset = `version: 1
object: Contact
relationship_field: AccountId
fields:
  - name: Name
    label: Full Name
    type: text
    required: true
    editable: true
    sortable: true
    filterable: true
  - name: Email
    label: Email
    type: email
    editable: true
    sortable: true
    filterable: true
  - name: Phone
    label: Phone
    type: phone
    editable: true
  - name: Title
    label: Title
    type: text
    editable: true
    sortable: true
records:
  - id: rec-001
    AccountId: acc-001
    Name: Amy Taylor
    Email: amy.taylor@example.com
    Phone: (212) 555-0186
    Title: VP of Sales
generate:
  count: 24
  parent_ids: [acc-001, acc-002]
`

func writeExampleDataset() error {
	path := "seed/contacts.yaml"
	if _, err := os.Stat(path); err == nil {
		color.Yellow("⚠️  %s already exists, skipping", path)
		return nil
	}

	if err := os.MkdirAll("seed", 0755); err != nil {
		return fmt.Errorf("failed to create seed directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(exampleDataset), 0644); err != nil {
		return fmt.Errorf("failed to write example dataset: %w", err)
	}
	color.Green("✅ Created %s", path)
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
