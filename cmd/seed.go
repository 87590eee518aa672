package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/relgrid/internal/config"
	"github.com/Lumos-Labs-HQ/relgrid/internal/seeder"
)

var seedCmd = &cobra.Command{
	Use:   "seed <dataset.yaml>",
	Short: "Load a YAML dataset into the database",
	Long: `Load field metadata and records from a YAML dataset file, creating
the metadata and object tables when they do not exist yet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ds, err := seeder.LoadDataset(args[0])
		if err != nil {
			return err
		}

		s, err := seeder.NewSeeder(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.Seed(context.Background(), ds)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
