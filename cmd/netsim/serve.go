package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"netsim-dashboard/internal/admin"
	"netsim-dashboard/internal/logging"
	"netsim-dashboard/internal/render"
	"netsim-dashboard/internal/scenario"
	"netsim-dashboard/internal/sim"
)

var (
	serveListen    string
	serveSnapshot  string
	serveScenario  string
	serveFaultLink string
	serveLogFile   string
	serveTUI       bool
	servePrintOnly bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the topology dashboard and run the simulation controller",
	Long:  "serve starts the web dashboard, the simulation controller and the configured stats/event writers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := routeLogs(serveTUI); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("listen") {
			cfg.ListenAddr = serveListen
		}
		if flags.Changed("snapshot") {
			cfg.Snapshot = serveSnapshot
		}
		if flags.Changed("scenario") {
			cfg.Scenario = serveScenario
		}
		if flags.Changed("fault-link") {
			cfg.FaultLink = serveFaultLink
		}
		log := slog.Default()

		snap, err := loadSnapshot(cfg.Snapshot)
		if err != nil {
			return err
		}
		if cfg.FaultLink != "" {
			if _, ok := snap.FindLink(cfg.FaultLink); !ok {
				return fmt.Errorf("fault link %q not found in snapshot", cfg.FaultLink)
			}
		}

		var sc *scenario.Scenario
		if cfg.Scenario != "" {
			if sc, err = scenario.Resolve(cfg.Scenario); err != nil {
				return err
			}
			log.Info("scenario loaded", "name", sc.Name, "steps", len(sc.Steps), "last_step", sc.Last())
		}

		views, err := render.New(cfg.ConfigBaseURL)
		if err != nil {
			return err
		}

		hub := admin.NewHub(log)
		faultLink := cfg.FaultLink
		if faultLink == "" {
			faultLink = defaultFaultLink(snap)
		}
		writers, cleanup, err := newWriters(writerOptions{
			Snapshot:  snap,
			PrintOnly: servePrintOnly,
			LogFile:   serveLogFile,
			TUI:       serveTUI,
			FaultLink: faultLink,
			Hub:       hub,
			Scenario:  sc,
			Logger:    log,
		})
		if err != nil {
			hub.Close()
			return err
		}
		defer cleanup()

		ctrl := sim.NewController(snap, sim.Settings{
			TickInterval:   cfg.TickInterval,
			InjectLatency:  cfg.InjectLatency,
			RestoreLatency: cfg.RestoreLatency,
			FaultLink:      faultLink,
			Logger:         log,
		}, writers, writers, sim.ClockScheduler{}, nil, nil)
		writers.SetActions(sim.ActionsFor(ctrl))

		srv := admin.NewServer(ctrl, snap, views, hub, admin.Options{
			ToastVisible: cfg.ToastVisible,
			ToastFade:    cfg.ToastFade,
			Listening:    writers.SetAdminStatus,
			Logger:       log,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(logging.NewContext(ctx, log))
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(ctx, cfg.ListenAddr)
			cancel()
		}()

		ctrl.Run(ctx)
		if err := <-errCh; err != nil {
			return fmt.Errorf("admin server: %w", err)
		}
		log.Info("network simulation stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "Address of the web dashboard (overrides config)")
	serveCmd.Flags().StringVar(&serveSnapshot, "snapshot", "", "Path to a topology snapshot YAML (embedded sample when empty)")
	serveCmd.Flags().StringVar(&serveScenario, "scenario", "", "Built-in scenario name or path to a scenario YAML")
	serveCmd.Flags().StringVar(&serveFaultLink, "fault-link", "", "Link toggled by fault actions, e.g. R1-R2")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Path to export stats/event logs (JSONL)")
	serveCmd.Flags().BoolVar(&serveTUI, "tui", false, "Show the terminal dashboard instead of printing rows")
	serveCmd.Flags().BoolVar(&servePrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
}
