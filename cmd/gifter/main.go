package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shopgifter/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool

	// Loaded once per invocation
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gifter",
	Short: "Bulk gifting for the item shop over a pool of bot accounts",
	Long: `gifter sends item shop entries as gifts from a pool of bot accounts.

Bots are tried in pool order. When a bot cannot pay or has hit its gift
limit, the next bot takes over and keeps going for the rest of the run.

Configuration is read from the environment (and a .env file when present).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger, err = newLogger(cfg.App, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(giftCmd, shopCmd, accountsCmd, historyCmd, rulesCmd)
}

// newLogger builds a console logger for development and JSON otherwise.
// Debug level comes from --verbose or APP_DEBUG.
func newLogger(app config.AppConfig, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if app.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if verbose || app.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
