package cmd

import (
	"context"
	"log/slog"

	"github.com/gaze-network/pool-portal/internal/config"
	"github.com/gaze-network/pool-portal/pkg/automaxprocs"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:          "pool-portal",
	Long:         `Storage pool rental portal: wallet and node provisioning, pool applications and live pool/transaction listings.`,
	SilenceUsage: true,
}

func init() {
	var configFile string

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("control-api", "", "control daemon base URL, E.g. `http://localhost:8080`")
	flags.Bool("mock", false, "serve synthetic control API responses instead of calling the daemon")
	flags.Bool("debug", false, "enable debug logging")

	// Bind flags to configuration
	config.BindPFlag("control_api.url", flags.Lookup("control-api"))
	config.BindPFlag("control_api.mock_data", flags.Lookup("mock"))
	config.BindPFlag("logger.debug", flags.Lookup("debug"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		conf := config.Parse(configFile)

		if err := logger.Init(conf.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", conf.Logger))
		}

		if err := automaxprocs.Init(); err != nil {
			logger.Error("Failed to set GOMAXPROCS", slogx.Error(err))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	cmd.AddCommand(
		NewVersionCommand(),
		NewRunCommand(),
		NewSignupCommand(),
		NewApplyCommand(),
		NewPoolsCommand(),
		NewTransactionsCommand(),
		NewBalanceCommand(),
	)

	// Execute command
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Failed to execute root command", slogx.Error(err))
	}
}
