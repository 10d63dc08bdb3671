package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todolist/internal/adapter/database/postgres"
	"todolist/internal/adapter/database/sqlite"
	server "todolist/internal/adapter/http"
	"todolist/pkg/config"
	"todolist/pkg/logger"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "todolist",
		Short:        "Server-rendered to-do list",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_FILE"), "path to a YAML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), configPath)
		},
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(path string) (*config.AppConfig, *logger.Logger, error) {
	cfg, err := config.Load(path)

	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(logger.Config{
		ServiceName: cfg.ServiceName,
		Level:       cfg.Log.Level,
		LokiURL:     cfg.Log.LokiURL,
	})

	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	return cfg, log, nil
}

func serve(ctx context.Context, path string) error {
	cfg, log, err := setup(path)

	if err != nil {
		return err
	}

	defer log.Sync()

	return server.StartServer(ctx, cfg, log)
}

func migrate(ctx context.Context, path string) error {
	cfg, log, err := setup(path)

	if err != nil {
		return err
	}

	defer log.Sync()

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, postgres.Config{URL: cfg.Database.URL, MaxConns: 1})

		if err != nil {
			return err
		}

		db.Close()
	default:
		db, err := sqlite.NewDB(ctx, sqlite.Config{Path: cfg.Database.Path, MaxConns: 1})

		if err != nil {
			return err
		}

		db.Close()
	}

	log.Logger.Info("Migrations applied", zap.String("driver", cfg.Database.Driver))

	return nil
}
