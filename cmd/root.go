// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/codetriage/internal/config"
	"github.com/xkilldash9x/codetriage/internal/observability"
)

// NewRootCommand builds the base command with all subcommands attached. A
// fresh instance per invocation keeps flag state from leaking between runs.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "codetriage",
		Short: "codetriage turns raw code-analysis results into triage reports.",
		// Version is dynamically set at build time. See cmd/version.go.
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// This function runs before any command, setting up config and logging.
			if err := initializeConfig(cfgFile); err != nil {
				return err
			}

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				// Initialize a fallback logger if config loading fails.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "codetriage"})
				return fmt.Errorf("failed to load config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Info("Starting codetriage", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRenderCmd())

	return rootCmd
}

// Execute runs the root command with a signal-aware context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		}
		return err
	}
	return nil
}

// initializeConfig reads in config file and ENV variables if set.
func initializeConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CODETRIAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars.
	}
	return nil
}
