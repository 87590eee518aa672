package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/relgrid/internal/config"
	"github.com/Lumos-Labs-HQ/relgrid/internal/store"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Show the configured object's field metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}

		ctx := context.Background()
		st := store.New(cfg.Database.Provider)
		if err := st.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer st.Close()

		meta, err := st.FetchFieldMetadata(ctx, cfg.Grid.ObjectName)
		if err != nil {
			return fmt.Errorf("failed to fetch field metadata: %w", err)
		}
		if len(meta) == 0 {
			color.Yellow("⚠️  No field metadata found for %s (run 'relgrid seed' first)", cfg.Grid.ObjectName)
			return nil
		}

		color.Cyan("📋 Fields for %s:", cfg.Grid.ObjectName)
		fmt.Println()
		fmt.Printf("  %-20s %-20s %-10s %s\n", "NAME", "LABEL", "TYPE", "FLAGS")
		for _, f := range meta {
			var flags []string
			if f.Required {
				flags = append(flags, "required")
			}
			if f.Editable {
				flags = append(flags, "editable")
			}
			if f.Sortable {
				flags = append(flags, "sortable")
			}
			if f.Filterable {
				flags = append(flags, "filterable")
			}
			fmt.Printf("  %-20s %-20s %-10s %s\n", f.Name, f.Label, f.Type, strings.Join(flags, ","))
			if len(f.PicklistValues) > 0 {
				color.White("    options: %s", strings.Join(f.PicklistValues, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
