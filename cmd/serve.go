package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/relgrid/internal/config"
	"github.com/Lumos-Labs-HQ/relgrid/internal/server"
	"github.com/Lumos-Labs-HQ/relgrid/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the grid API over HTTP",
	Long:  `Start the HTTP server exposing grid records, metadata, mutations and CSV export.`,
	Args:  cobra.NoArgs,
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

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st := store.New(cfg.Database.Provider)
		if err := st.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer st.Close()

		color.Green("🚀 Serving %s grid on port %s", cfg.Grid.ObjectName, cfg.Server.Port)
		return server.New(cfg, st, logger).ListenAndServe(ctx)
	},
}

func newLogger() (*zap.SugaredLogger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.Sugar(), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
