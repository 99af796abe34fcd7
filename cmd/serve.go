// File: cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/codetriage/api/schemas"
	"github.com/xkilldash9x/codetriage/internal/config"
	"github.com/xkilldash9x/codetriage/internal/detector"
	"github.com/xkilldash9x/codetriage/internal/observability"
	"github.com/xkilldash9x/codetriage/internal/orchestrator"
	"github.com/xkilldash9x/codetriage/internal/server"
	"github.com/xkilldash9x/codetriage/internal/store"
)

// serveComponents holds everything the serve command wires together.
type serveComponents struct {
	Orchestrator *orchestrator.Orchestrator
	Server       *server.Server
	DBPool       *pgxpool.Pool
}

// Shutdown gracefully closes all components.
func (sc *serveComponents) Shutdown(logger *zap.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if sc.Orchestrator != nil {
		if err := sc.Orchestrator.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Orchestrator shutdown incomplete", zap.Error(err))
		}
	}
	if sc.DBPool != nil {
		sc.DBPool.Close()
	}
}

// newServeCmd creates and configures the `serve` command.
func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Runs the triage service: accepts submissions and serves generated artifacts",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
				return err
			}
			return viper.BindPFlag("detector.base_url", cmd.Flags().Lookup("detector-url"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to finalize config: %w", err)
			}

			components, err := initializeServeComponents(ctx, cfg, logger)
			if err != nil {
				if components != nil {
					components.Shutdown(logger)
				}
				return fmt.Errorf("failed to initialize service components: %w", err)
			}
			defer components.Shutdown(logger)

			if err := components.Server.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Info("Service stopped by signal")
					return nil
				}
				return err
			}
			return nil
		},
	}

	serveCmd.Flags().String("addr", "", "Listen address for the HTTP server. (Overrides config/env)")
	serveCmd.Flags().String("detector-url", "", "Base URL of the external detection service. (Overrides config/env)")

	return serveCmd
}

func initializeServeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*serveComponents, error) {
	components := &serveComponents{}

	client, err := detector.NewClient(cfg.Detector.BaseURL, cfg.Detector.RequestTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector client: %w", err)
	}

	artifacts, err := buildStore(ctx, cfg, logger, components)
	if err != nil {
		return components, err
	}

	orch, err := orchestrator.New(cfg, logger, client, artifacts)
	if err != nil {
		return components, err
	}
	components.Orchestrator = orch

	srv, err := server.New(cfg, logger, orch, client, artifacts, client)
	if err != nil {
		return components, err
	}
	components.Server = srv

	return components, nil
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, components *serveComponents) (schemas.ArtifactStore, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		dbPool, err := pgxpool.New(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		components.DBPool = dbPool

		dbStore, err := store.NewPostgresStore(ctx, dbPool, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database store: %w", err)
		}
		return dbStore, nil
	default:
		fileStore, err := store.NewFileStore(cfg.Storage.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		return fileStore, nil
	}
}
