package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"netsim-dashboard/internal/config"
	"netsim-dashboard/internal/logging"
	"netsim-dashboard/internal/topology"
)

const defaultConfigPath = "config/netsim.yaml"

var (
	rootConfigPath string
	rootSchemaPath string
	rootLogLevel   string
	rootLogFormat  string
)

var rootCmd = &cobra.Command{
	Use:           "netsim",
	Short:         "Network topology dashboard and link-fault simulator",
	Long:          "netsim serves a topology analysis dashboard and a pseudo-simulation of packet counters with link-fault injection.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(rootLogLevel)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", defaultConfigPath, "Path to configuration YAML")
	rootCmd.PersistentFlags().StringVar(&rootSchemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&rootLogFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(topologyCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// logOutput receives process logs. The TUI takes over the terminal, so
// serve --tui discards them.
var logOutput io.Writer = os.Stderr

// routeLogs rebuilds the default logger on io.Discard when the TUI owns the
// terminal. The root pre-run hook has already built one on stderr.
func routeLogs(tui bool) error {
	if !tui {
		return nil
	}
	logOutput = io.Discard
	return setupLogger(rootLogLevel)
}

func setupLogger(level string) error {
	log, err := logging.NewWithOptions(logOutput, level, rootLogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	return nil
}

// loadConfig reads the configuration file and applies environment
// overrides. A missing default config file yields the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(rootConfigPath, rootSchemaPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		slog.Debug("no config file, using defaults", "path", rootConfigPath)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if rootLogLevel == "" && cfg.LogLevel != "" {
		if err := setupLogger(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func loadSnapshot(path string) (*topology.Snapshot, error) {
	if path == "" {
		return topology.Default(), nil
	}
	snap, err := topology.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}
