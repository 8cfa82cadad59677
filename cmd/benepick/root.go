package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/benepick/benepick/internal/cli"
	"github.com/benepick/benepick/internal/config"
	"github.com/benepick/benepick/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "benepick",
	Short: "Benepick is a conversational welfare benefit assistant",
	Long: `Benepick guides users through sign-up, profile onboarding and a policy
search chat, filling slots from free Korean text.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the config file named by --config plus the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newApp assembles the application. Quiet commands only log in debug mode.
func newApp(cmd *cobra.Command, quiet bool) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	if quiet && cfg.Log.Level != "debug" {
		logger = logging.NewNop()
	}
	slog.SetDefault(logger)

	return cli.NewApp(cfg, logger)
}
