package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/relgrid/internal/config"
	"github.com/Lumos-Labs-HQ/relgrid/internal/grid"
	"github.com/Lumos-Labs-HQ/relgrid/internal/notify"
	"github.com/Lumos-Labs-HQ/relgrid/internal/store"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <parent-id>",
	Short: "Export a related list to CSV",
	Long:  `Fetch every visible record for the given parent and write them to a CSV file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

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

		// One oversized page so the export covers the whole list.
		gridCfg := cfg.Grid
		gridCfg.PageSize = 10000

		g := grid.New(gridCfg, args[0], st, notify.Discard{}, logger)
		if err := g.Load(ctx); err != nil {
			return fmt.Errorf("failed to load records: %w", err)
		}
		if msg := g.LoadError(); msg != "" {
			return fmt.Errorf("failed to load records: %s", msg)
		}

		data, filename, err := g.ExportCSV()
		if err != nil {
			return err
		}

		if exportOutput != "" {
			filename = exportOutput
		}
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return fmt.Errorf("failed to write export file: %w", err)
		}

		color.Green("✅ Exported %d records to %s", g.TotalCount(), filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default <object>_export.csv)")
	rootCmd.AddCommand(exportCmd)
}
